package engine

import (
	"fmt"
	"math"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
)

// Takeoff moves the node straight up or down to a target altitude. The
// ground position never changes and the heading is left alone.
type Takeoff struct {
	base
	d *directive.Takeoff
}

func newTakeoff(node *fleet.Node, env Env, d *directive.Takeoff) *Takeoff {
	e := &Takeoff{base: newBase(directive.KindTakeoff, node, env), d: d}
	if d != nil {
		e.target = kinematics.Point{X: node.X, Y: node.Y, Z: d.Altitude}
	}
	return e
}

func (e *Takeoff) Init() error {
	if e.d == nil {
		return fmt.Errorf("engine: %s: directive missing", e.kind)
	}
	e.pitch = 0
	if e.target.Z > e.origin.Z {
		e.climbAngle = 90
	} else {
		e.climbAngle = -90
	}
	e.speed = e.node.SpeedFor(e.climbAngle, energy.PessimismExpected)
	e.rate = e.node.SampleMovementRate(e.climbAngle)
	e.initialized = true
	return nil
}

func (e *Takeoff) Commit() {
	e.node.Pitch = e.pitch
	e.node.ClimbAngle = e.climbAngle
	e.node.Speed = e.speed
	e.takeOwnership(e)
}

func (e *Takeoff) Update(dt float64) {
	if dt <= 0 {
		return
	}
	step := e.speed * dt
	if remaining := math.Abs(e.target.Z - e.node.Z); step >= remaining {
		e.node.Z = e.target.Z
	} else if e.target.Z > e.node.Z {
		e.node.Z += step
	} else {
		e.node.Z -= step
	}
	e.node.Battery.Discharge(e.rate * dt)
}

func (e *Takeoff) Completed() bool {
	return e.completed || math.Abs(e.target.Z-e.node.Z) < kinematics.Epsilon
}

func (e *Takeoff) OverallDuration() (float64, error) {
	if err := e.requireInitialized("overall duration"); err != nil {
		return 0, err
	}
	return math.Abs(e.target.Z-e.origin.Z) / e.speed, nil
}

func (e *Takeoff) OverallDurationQuantile() (float64, error) {
	if err := e.requireInitialized("overall duration quantile"); err != nil {
		return 0, err
	}
	pessimistic := e.node.SpeedFor(e.climbAngle, energy.PessimismWorst)
	return math.Abs(e.target.Z-e.origin.Z) / pessimistic, nil
}

func (e *Takeoff) RemainingTime() (float64, error) {
	if err := e.requireInitialized("remaining time"); err != nil {
		return 0, err
	}
	return math.Abs(e.target.Z-e.node.Z) / e.speed, nil
}

func (e *Takeoff) ProbableConsumption(normalized bool, method int) (float64, error) {
	if err := e.requireInitialized("probable consumption"); err != nil {
		return 0, err
	}
	duration := math.Abs(e.target.Z-e.origin.Z) / e.speed
	if duration == 0 {
		return 0, nil
	}
	total := e.node.MovementConsumption(e.climbAngle, duration, method)
	if normalized {
		return total / duration, nil
	}
	return total, nil
}
