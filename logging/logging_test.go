package logging

import (
	"context"
	"testing"
	"time"
)

type captureSink struct {
	events []Event
}

func (s *captureSink) Write(event Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func TestFanoutFiltersBySeverity(t *testing.T) {
	sink := &captureSink{}
	fanout := NewFanout(nil, SeverityWarn, sink)

	fanout.Publish(context.Background(), Event{Type: "a", Severity: SeverityDebug})
	fanout.Publish(context.Background(), Event{Type: "b", Severity: SeverityInfo})
	fanout.Publish(context.Background(), Event{Type: "c", Severity: SeverityWarn})
	fanout.Publish(context.Background(), Event{Type: "d", Severity: SeverityError})

	if len(sink.events) != 2 {
		t.Fatalf("delivered %d events, want 2", len(sink.events))
	}
	if sink.events[0].Type != "c" || sink.events[1].Type != "d" {
		t.Fatalf("delivered types [%s, %s], want [c, d]", sink.events[0].Type, sink.events[1].Type)
	}
}

func TestFanoutStampsMissingTime(t *testing.T) {
	sink := &captureSink{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fanout := NewFanout(ClockFunc(func() time.Time { return fixed }), SeverityDebug, sink)

	fanout.Publish(context.Background(), Event{Type: "stamped"})
	preset := fixed.Add(-time.Hour)
	fanout.Publish(context.Background(), Event{Type: "kept", Time: preset})

	if got := sink.events[0].Time; !got.Equal(fixed) {
		t.Fatalf("stamped time = %v, want %v", got, fixed)
	}
	if got := sink.events[1].Time; !got.Equal(preset) {
		t.Fatalf("preset time = %v, want untouched %v", got, preset)
	}
}

func TestWithFieldsDoesNotOverrideProducer(t *testing.T) {
	var captured Event
	base := PublisherFunc(func(_ context.Context, event Event) { captured = event })

	wrapped := WithFields(base, map[string]any{"region": "north", "run": 7})
	wrapped.Publish(context.Background(), Event{
		Type:  "x",
		Extra: map[string]any{"run": 9},
	})

	if captured.Extra["region"] != "north" {
		t.Fatalf("region = %v, want north", captured.Extra["region"])
	}
	if captured.Extra["run"] != 9 {
		t.Fatalf("run = %v, producer value should win", captured.Extra["run"])
	}
}

func TestWithFieldsNilPublisher(t *testing.T) {
	p := WithFields(nil, map[string]any{"k": "v"})
	// Must not panic.
	p.Publish(context.Background(), Event{Type: "noop"})
}

func TestNopPublisherIsInert(t *testing.T) {
	NopPublisher().Publish(context.Background(), Event{Type: "ignored"})
}
