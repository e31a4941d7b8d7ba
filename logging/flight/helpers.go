// Package flight publishes the directive-lifecycle events emitted by the
// execution engines and the mission runner.
package flight

import (
	"context"

	"fly-and-charge/sim/logging"
)

const (
	// EventDirectiveStarted is emitted when an engine becomes active.
	EventDirectiveStarted logging.EventType = "flight.directive_started"
	// EventDirectiveCompleted is emitted when an active engine is retired.
	EventDirectiveCompleted logging.EventType = "flight.directive_completed"
	// EventExchangeHandoff is emitted when mission data is transferred to a peer.
	EventExchangeHandoff logging.EventType = "flight.exchange_handoff"
	// EventPeerMissing is emitted when an exchange finds no peer to hand off to.
	EventPeerMissing logging.EventType = "flight.peer_missing"
	// EventForecastUnsupported is emitted for consumption queries a directive
	// kind cannot answer precisely.
	EventForecastUnsupported logging.EventType = "flight.forecast_unsupported"
	// EventMissionAbandoned is emitted when a node drops its mission to recharge.
	EventMissionAbandoned logging.EventType = "flight.mission_abandoned"
)

// DirectivePayload identifies the directive an engine executes.
type DirectivePayload struct {
	Kind          string  `json:"kind"`
	TargetX       float64 `json:"targetX"`
	TargetY       float64 `json:"targetY"`
	TargetZ       float64 `json:"targetZ"`
	PartOfMission bool    `json:"partOfMission"`
}

func DirectiveStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DirectivePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventDirectiveStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFlight,
		Payload:  payload,
	})
}

func DirectiveCompleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DirectivePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventDirectiveCompleted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFlight,
		Payload:  payload,
	})
}

// HandoffPayload names the peer receiving mission data.
type HandoffPayload struct {
	PeerID string `json:"peerId"`
}

func ExchangeHandoff(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload HandoffPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventExchangeHandoff,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: payload.PeerID, Kind: logging.EntityKindUAV}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFlight,
		Payload:  payload,
	})
}

// PeerMissing reports the degraded-but-continuing case: an exchange with a
// recharge request but no known peer. The handoff is skipped.
func PeerMissing(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventPeerMissing,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryFlight,
	})
}

// ForecastUnsupportedPayload records which query fell back to an estimate.
type ForecastUnsupportedPayload struct {
	Kind  string `json:"kind"`
	Query string `json:"query"`
}

func ForecastUnsupported(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ForecastUnsupportedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventForecastUnsupported,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryFlight,
		Payload:  payload,
	})
}

func MissionAbandoned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, logging.Event{
		Type:     EventMissionAbandoned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFlight,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
