package telemetry

import (
	"testing"
	"time"

	"fly-and-charge/sim/logging"
	"fly-and-charge/sim/logging/flight"
	"fly-and-charge/sim/logging/power"
)

func TestRecorderCountsLifecycleEvents(t *testing.T) {
	r := NewRecorder()

	writes := []struct {
		eventType logging.EventType
		count     int
	}{
		{flight.EventDirectiveStarted, 3},
		{flight.EventDirectiveCompleted, 2},
		{flight.EventMissionAbandoned, 1},
		{power.EventReservationRequested, 1},
		{power.EventChargeFinished, 1},
		{power.EventBatteryDepleted, 1},
		{flight.EventForecastUnsupported, 2},
		{"flight.unknown_event", 5},
	}
	for _, w := range writes {
		for i := 0; i < w.count; i++ {
			if err := r.Write(logging.Event{Type: w.eventType}); err != nil {
				t.Fatalf("Write(%s) failed: %v", w.eventType, err)
			}
		}
	}
	r.RecordTick(1500 * time.Microsecond)

	snap := r.Snapshot()
	if snap.DirectivesStarted != 3 {
		t.Fatalf("DirectivesStarted = %d, want 3", snap.DirectivesStarted)
	}
	if snap.DirectivesCompleted != 2 {
		t.Fatalf("DirectivesCompleted = %d, want 2", snap.DirectivesCompleted)
	}
	if snap.MissionsAbandoned != 1 || snap.ReservationsSent != 1 || snap.ChargesFinished != 1 || snap.BatteryDepletions != 1 {
		t.Fatalf("single-shot counters = %+v, want all 1", snap)
	}
	if snap.ForecastFallbacks != 2 {
		t.Fatalf("ForecastFallbacks = %d, want 2", snap.ForecastFallbacks)
	}
	if snap.TicksProcessed != 1 {
		t.Fatalf("TicksProcessed = %d, want 1", snap.TicksProcessed)
	}
	if snap.TickDurationMicros != 1500 {
		t.Fatalf("TickDurationMicros = %d, want 1500", snap.TickDurationMicros)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	if err := r.Write(logging.Event{Type: flight.EventDirectiveStarted}); err != nil {
		t.Fatalf("nil Write failed: %v", err)
	}
	r.RecordTick(time.Millisecond)
	if snap := r.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("nil Snapshot = %+v, want zero value", snap)
	}
}
