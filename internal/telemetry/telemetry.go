// Package telemetry keeps cheap atomic counters for the simulation loop and
// exposes them as a JSON-friendly snapshot. The recorder also implements
// logging.Sink, so lifecycle events feed the counters without the runner
// knowing telemetry exists.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"fly-and-charge/sim/logging"
	"fly-and-charge/sim/logging/flight"
	"fly-and-charge/sim/logging/power"
)

type Recorder struct {
	ticksProcessed     atomic.Uint64
	tickDurationMicros atomic.Int64

	directivesStarted   atomic.Uint64
	directivesCompleted atomic.Uint64
	missionsAbandoned   atomic.Uint64
	reservationsSent    atomic.Uint64
	chargesFinished     atomic.Uint64
	batteryDepletions   atomic.Uint64
	forecastFallbacks   atomic.Uint64

	debug bool
}

type Snapshot struct {
	TicksProcessed      uint64 `json:"ticksProcessed"`
	TickDurationMicros  int64  `json:"tickDurationMicros"`
	DirectivesStarted   uint64 `json:"directivesStarted"`
	DirectivesCompleted uint64 `json:"directivesCompleted"`
	MissionsAbandoned   uint64 `json:"missionsAbandoned"`
	ReservationsSent    uint64 `json:"reservationsSent"`
	ChargesFinished     uint64 `json:"chargesFinished"`
	BatteryDepletions   uint64 `json:"batteryDepletions"`
	ForecastFallbacks   uint64 `json:"forecastFallbacks"`
}

func NewRecorder() *Recorder {
	r := &Recorder{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		r.debug = true
	}
	return r
}

// RecordTick notes one completed world step and how long it took in wall
// time.
func (r *Recorder) RecordTick(duration time.Duration) {
	if r == nil {
		return
	}
	micros := duration.Microseconds()
	if micros < 0 {
		micros = 0
	}
	r.ticksProcessed.Add(1)
	r.tickDurationMicros.Store(micros)
	if r.debug {
		fmt.Printf(
			"[telemetry] tick=%d duration=%dus started=%d completed=%d\n",
			r.ticksProcessed.Load(),
			micros,
			r.directivesStarted.Load(),
			r.directivesCompleted.Load(),
		)
	}
}

// Write implements logging.Sink, mapping lifecycle events onto counters.
// Unrecognized event types are ignored.
func (r *Recorder) Write(event logging.Event) error {
	if r == nil {
		return nil
	}
	switch event.Type {
	case flight.EventDirectiveStarted:
		r.directivesStarted.Add(1)
	case flight.EventDirectiveCompleted:
		r.directivesCompleted.Add(1)
	case flight.EventMissionAbandoned:
		r.missionsAbandoned.Add(1)
	case flight.EventForecastUnsupported:
		r.forecastFallbacks.Add(1)
	case power.EventReservationRequested:
		r.reservationsSent.Add(1)
	case power.EventChargeFinished:
		r.chargesFinished.Add(1)
	case power.EventBatteryDepleted:
		r.batteryDepletions.Add(1)
	}
	return nil
}

func (r *Recorder) Close(context.Context) error {
	return nil
}

func (r *Recorder) DebugEnabled() bool {
	return r != nil && r.debug
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		TicksProcessed:      r.ticksProcessed.Load(),
		TickDurationMicros:  r.tickDurationMicros.Load(),
		DirectivesStarted:   r.directivesStarted.Load(),
		DirectivesCompleted: r.directivesCompleted.Load(),
		MissionsAbandoned:   r.missionsAbandoned.Load(),
		ReservationsSent:    r.reservationsSent.Load(),
		ChargesFinished:     r.chargesFinished.Load(),
		BatteryDepletions:   r.batteryDepletions.Load(),
		ForecastFallbacks:   r.forecastFallbacks.Load(),
	}
}
