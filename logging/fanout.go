package logging

import (
	"context"
	"log"
	"os"
	"time"
)

// Sink receives published events. Implementations must tolerate being
// called from the single simulation goroutine.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Fanout is a synchronous publisher that stamps wall time, filters by
// severity, and forwards each event to every sink in order. The simulation
// is single-threaded, so there is no queue or worker pool behind it.
type Fanout struct {
	sinks       []Sink
	clock       Clock
	minSeverity Severity
	fallback    *log.Logger
}

func NewFanout(clock Clock, minSeverity Severity, sinks ...Sink) *Fanout {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	kept := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &Fanout{
		sinks:       kept,
		clock:       clock,
		minSeverity: minSeverity,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
	}
}

func (f *Fanout) Publish(_ context.Context, event Event) {
	if f == nil || event.Severity < f.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = f.clock.Now()
	}
	for _, sink := range f.sinks {
		if err := sink.Write(event); err != nil {
			f.fallback.Printf("sink write failed for %s: %v", event.Type, err)
		}
	}
}

func (f *Fanout) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	var first error
	for _, sink := range f.sinks {
		if err := sink.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
