package engine

import (
	"context"
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
	"fly-and-charge/sim/logging/flight"
	"fly-and-charge/sim/logging/power"
)

// Exchange hands this node's mission data to a peer and, when a recharge
// was requested, routes the node to the nearest charging station on the way
// out. It has no geometric completion condition; an external actor latches
// it done.
type Exchange struct {
	base
	d *directive.Exchange
}

func newExchange(node *fleet.Node, env Env, d *directive.Exchange) *Exchange {
	return &Exchange{base: newBase(directive.KindExchange, node, env), d: d}
}

func (e *Exchange) Init() error {
	if e.d == nil {
		return fmt.Errorf("engine: %s: directive missing", e.kind)
	}
	e.rate = e.node.SampleHoverRate()
	e.initialized = true
	return nil
}

func (e *Exchange) Commit() {
	// Cosmetic spread of headings while nodes wait for the handoff.
	e.node.Yaw = float64((int(e.node.Battery.RemainingPercentage()) / 10 * 360) % 360)
	e.node.Pitch = 0
	e.node.ClimbAngle = 0
	e.node.Speed = 0
	e.takeOwnership(e)
}

func (e *Exchange) Update(dt float64) {
	if dt <= 0 {
		return
	}
	e.node.Battery.Discharge(e.rate * dt)
}

func (e *Exchange) OverallDuration() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

func (e *Exchange) OverallDurationQuantile() (float64, error) {
	return e.OverallDuration()
}

func (e *Exchange) RemainingTime() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

// ProbableConsumption has no duration to integrate over, so it falls back
// to a one-second hover estimate. Only the normalized form is supported;
// the total form is logged and answered with the same figure.
func (e *Exchange) ProbableConsumption(normalized bool, _ int) (float64, error) {
	if !normalized {
		flight.ForecastUnsupported(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef(), flight.ForecastUnsupportedPayload{
			Kind:  string(e.kind),
			Query: "non-normalized probable consumption",
		})
	}
	return e.node.HoverConsumption(1, energy.MethodConfidence), nil
}

// EnterActions transfers mission data to the peer when a recharge was
// requested. A missing peer is degraded-but-continuing: logged, skipped.
func (e *Exchange) EnterActions() {
	if !e.d.RechargeRequested {
		return
	}
	if e.d.Peer == nil {
		flight.PeerMissing(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef())
		return
	}
	e.node.TransferMissionDataTo(e.d.Peer)
	flight.ExchangeHandoff(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef(), flight.HandoffPayload{
		PeerID: e.d.Peer.ID,
	})
}

// ExitActions routes the node to the nearest charging station: it forecasts
// the inbound flight, fires a reservation at the station, and returns the
// travel, charge, and idle engines to prepend to the queue, each flagged as
// outside the formal mission. The active mission is abandoned.
func (e *Exchange) ExitActions() []Engine {
	if !e.d.RechargeRequested {
		return nil
	}
	station, ok := e.lookupStation()
	if !ok {
		flight.ForecastUnsupported(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef(), flight.ForecastUnsupportedPayload{
			Kind:  string(e.kind),
			Query: "no charging station reachable",
		})
		return nil
	}
	stationPoint := kinematics.Point{X: station.X, Y: station.Y, Z: station.Z}

	travel := newWaypoint(e.node, e.env, &directive.Waypoint{X: station.X, Y: station.Y, Z: station.Z})
	travel.SetPartOfMission(false)
	travel.MarkNoReplacementNeeded()
	// Initialized immediately so the reservation can carry its forecast.
	if err := travel.Init(); err != nil {
		panic(fmt.Sprintf("engine: synthesized station leg failed to initialize: %v", err))
	}
	duration, err := travel.OverallDuration()
	if err != nil {
		panic(fmt.Sprintf("engine: synthesized station leg has no duration: %v", err))
	}
	consumption, err := travel.ProbableConsumption(false, energy.MethodExpected)
	if err != nil {
		panic(fmt.Sprintf("engine: synthesized station leg has no consumption forecast: %v", err))
	}

	reservation := fleet.Reservation{
		NodeID:                 e.node.ID,
		EstimatedArrival:       e.env.now() + duration,
		ConsumptionTillArrival: consumption,
		TargetPercentage:       100,
	}
	if e.env.SendReservation != nil {
		e.env.SendReservation(station, reservation)
	} else {
		station.Reserve(reservation)
	}
	power.ReservationRequested(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef(), power.ReservationPayload{
		StationID:              station.ID,
		EstimatedArrival:       reservation.EstimatedArrival,
		ConsumptionTillArrival: reservation.ConsumptionTillArrival,
		TargetPercentage:       reservation.TargetPercentage,
	})

	charge := newCharge(e.node, e.env, &directive.Charge{Station: station})
	charge.setTargetPoint(stationPoint)
	charge.SetPartOfMission(false)
	charge.MarkNoReplacementNeeded()

	idle := newIdle(e.node, e.env)
	idle.origin = stationPoint
	idle.target = stationPoint
	idle.SetPartOfMission(false)
	idle.MarkNoReplacementNeeded()

	if e.env.AbandonMission != nil {
		e.env.AbandonMission()
	}
	flight.MissionAbandoned(context.Background(), e.env.publisher(), e.env.tick(), e.actorRef())

	return []Engine{travel, charge, idle}
}

// Peer returns the node on the other side of the exchange, if known.
func (e *Exchange) Peer() *fleet.Node {
	if e.d == nil {
		return nil
	}
	return e.d.Peer
}

func (e *Exchange) lookupStation() (*fleet.Station, bool) {
	if e.env.NearestStation == nil {
		return nil, false
	}
	return e.env.NearestStation(e.node.X, e.node.Y, e.node.Z)
}
