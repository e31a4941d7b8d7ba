// Package sinks provides the stock logging.Sink implementations.
package sinks

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"fly-and-charge/sim/logging"
)

// ZerologSink renders events through a zerolog logger, one log line per
// event with the payload embedded as a structured field.
type ZerologSink struct {
	logger zerolog.Logger
}

func NewZerologSink(w io.Writer) *ZerologSink {
	return &ZerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// NewConsoleSink is a ZerologSink with human-readable console formatting.
func NewConsoleSink(w io.Writer) *ZerologSink {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	return &ZerologSink{logger: zerolog.New(console).With().Timestamp().Logger()}
}

func (s *ZerologSink) Write(event logging.Event) error {
	if s == nil {
		return nil
	}
	entry := s.logger.WithLevel(level(event.Severity)).
		Str("event", string(event.Type)).
		Uint64("tick", event.Tick)
	if event.Actor.ID != "" || event.Actor.Kind != "" {
		entry = entry.Str("actor", formatEntity(event.Actor))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, ref := range event.Targets {
			targets = append(targets, formatEntity(ref))
		}
		entry = entry.Strs("targets", targets)
	}
	if event.Category != "" {
		entry = entry.Str("category", event.Category)
	}
	if event.Payload != nil {
		entry = entry.Interface("payload", event.Payload)
	}
	for k, v := range event.Extra {
		entry = entry.Interface(k, v)
	}
	entry.Send()
	return nil
}

func (s *ZerologSink) Close(context.Context) error {
	return nil
}

func level(sev logging.Severity) zerolog.Level {
	switch sev {
	case logging.SeverityDebug:
		return zerolog.DebugLevel
	case logging.SeverityInfo:
		return zerolog.InfoLevel
	case logging.SeverityWarn:
		return zerolog.WarnLevel
	case logging.SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}
