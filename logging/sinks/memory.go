package sinks

import (
	"context"
	"sync"

	"fly-and-charge/sim/logging"
)

// MemorySink retains every written event. Tests use it to assert on the
// event stream a scenario produced.
type MemorySink struct {
	mu     sync.Mutex
	events []logging.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(event logging.Event) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}

// Events returns a copy of everything written so far.
func (s *MemorySink) Events() []logging.Event {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logging.Event(nil), s.events...)
}

// EventsOfType filters the captured events by type.
func (s *MemorySink) EventsOfType(t logging.EventType) []logging.Event {
	matched := make([]logging.Event, 0)
	for _, event := range s.Events() {
		if event.Type == t {
			matched = append(matched, event)
		}
	}
	return matched
}
