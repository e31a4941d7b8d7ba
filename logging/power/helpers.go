// Package power publishes battery and charging-infrastructure events.
package power

import (
	"context"

	"fly-and-charge/sim/logging"
)

const (
	// EventReservationRequested is emitted when a node asks a station for a spot.
	EventReservationRequested logging.EventType = "power.reservation_requested"
	// EventBatteryDepleted is emitted the first time a battery hits empty.
	EventBatteryDepleted logging.EventType = "power.battery_depleted"
	// EventChargeFinished is emitted when a charging node reaches a full battery.
	EventChargeFinished logging.EventType = "power.charge_finished"
)

// ReservationPayload mirrors the fire-and-forget reservation message.
type ReservationPayload struct {
	StationID              string  `json:"stationId"`
	EstimatedArrival       float64 `json:"estimatedArrival"`
	ConsumptionTillArrival float64 `json:"consumptionTillArrival"`
	TargetPercentage       float64 `json:"targetPercentage"`
}

func ReservationRequested(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReservationPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReservationRequested,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: payload.StationID, Kind: logging.EntityKindStation}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPower,
		Payload:  payload,
	})
}

// DepletionPayload captures where the battery ran dry.
type DepletionPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func BatteryDepleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DepletionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBatteryDepleted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryPower,
		Payload:  payload,
	})
}

// ChargeFinishedPayload reports how much energy a charge restored.
type ChargeFinishedPayload struct {
	StationID   string  `json:"stationId"`
	RestoredMAh float64 `json:"restoredMAh"`
}

func ChargeFinished(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChargeFinishedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChargeFinished,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{{ID: payload.StationID, Kind: logging.EntityKindStation}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPower,
		Payload:  payload,
	})
}
