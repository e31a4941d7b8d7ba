// Package net broadcasts world snapshots to WebSocket subscribers and
// exposes the simulation's Prometheus metrics. The hub never influences the
// simulation; it is a one-way observation channel.
package net

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"fly-and-charge/sim/internal/mission"
)

// Hub owns the live subscriber set.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	nextID      atomic.Uint64

	upgrader websocket.Upgrader
	metrics  *Metrics
}

type subscriber struct {
	id   uint64
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		subscribers: make(map[uint64]*subscriber),
		upgrader: websocket.Upgrader{
			// Spectator endpoint; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		metrics: metrics,
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Inbound messages are drained and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: upgrade failed: %v", err)
		return
	}

	sub := &subscriber{id: h.nextID.Add(1), conn: conn}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(sub)
}

// Broadcast serializes the snapshot once and writes it to every subscriber.
// Subscribers whose write fails are dropped.
func (h *Hub) Broadcast(snap mission.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.BroadcastsTotal.Inc()
		h.metrics.BroadcastBytes.Add(float64(len(data) * len(subs)))
	}

	for _, sub := range subs {
		sub.mu.Lock()
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			if h.metrics != nil {
				h.metrics.BroadcastErrors.Inc()
			}
			h.drop(sub)
		}
	}
	return nil
}

// SubscriberCount reports how many connections are registered.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()
	for _, sub := range subs {
		h.drop(sub)
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, present := h.subscribers[sub.id]
	if present {
		delete(h.subscribers, sub.id)
	}
	h.mu.Unlock()
	if !present {
		return
	}
	sub.conn.Close()
	if h.metrics != nil {
		h.metrics.Subscribers.Dec()
	}
}
