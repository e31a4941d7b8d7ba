package engine

import (
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
)

// Waypoint flies the node along a fixed heading to a 3D target.
type Waypoint struct {
	base
	d *directive.Waypoint
}

func newWaypoint(node *fleet.Node, env Env, d *directive.Waypoint) *Waypoint {
	e := &Waypoint{base: newBase(directive.KindWaypoint, node, env), d: d}
	if d != nil {
		e.target = kinematics.Point{X: d.X, Y: d.Y, Z: d.Z}
	}
	return e
}

func (e *Waypoint) Init() error {
	if e.d == nil {
		return fmt.Errorf("engine: %s: directive missing", e.kind)
	}
	dx := kinematics.Snap(e.target.X - e.origin.X)
	dy := kinematics.Snap(e.target.Y - e.origin.Y)
	dz := kinematics.Snap(e.target.Z - e.origin.Z)

	e.yaw = kinematics.Heading(dx, dy)
	e.climbAngle = kinematics.ClimbAngle(dz, kinematics.HorizontalDistance(e.origin, e.target))
	e.pitch = kinematics.PitchFromClimb(e.climbAngle)
	e.speed = e.node.SpeedFor(e.climbAngle, energy.PessimismExpected)
	e.rate = e.node.SampleMovementRate(e.climbAngle)
	e.initialized = true
	return nil
}

func (e *Waypoint) Commit() {
	e.node.Yaw = e.yaw
	e.node.Pitch = e.pitch
	e.node.ClimbAngle = e.climbAngle
	e.node.Speed = e.speed
	e.takeOwnership(e)
}

func (e *Waypoint) Update(dt float64) {
	if dt <= 0 {
		return
	}
	step := e.speed * dt
	current := kinematics.Point{X: e.node.X, Y: e.node.Y, Z: e.node.Z}
	if remaining := kinematics.Distance(current, e.target); step >= remaining {
		// Land exactly on the target so the arrival check is noise-free.
		e.node.X = e.target.X
		e.node.Y = e.target.Y
		e.node.Z = e.target.Z
	} else {
		dx, dy, dz := kinematics.StepComponents(step, e.yaw, e.climbAngle)
		e.node.X += dx
		e.node.Y += dy
		e.node.Z += dz
	}
	e.node.Battery.Discharge(e.rate * dt)
}

func (e *Waypoint) Completed() bool {
	if e.completed {
		return true
	}
	current := kinematics.Point{X: e.node.X, Y: e.node.Y, Z: e.node.Z}
	return kinematics.ManhattanDistance(current, e.target) < kinematics.Epsilon
}

func (e *Waypoint) OverallDuration() (float64, error) {
	if err := e.requireInitialized("overall duration"); err != nil {
		return 0, err
	}
	return kinematics.Distance(e.origin, e.target) / e.speed, nil
}

func (e *Waypoint) OverallDurationQuantile() (float64, error) {
	if err := e.requireInitialized("overall duration quantile"); err != nil {
		return 0, err
	}
	pessimistic := e.node.SpeedFor(e.climbAngle, energy.PessimismWorst)
	return kinematics.Distance(e.origin, e.target) / pessimistic, nil
}

func (e *Waypoint) RemainingTime() (float64, error) {
	if err := e.requireInitialized("remaining time"); err != nil {
		return 0, err
	}
	current := kinematics.Point{X: e.node.X, Y: e.node.Y, Z: e.node.Z}
	return kinematics.Distance(current, e.target) / e.speed, nil
}

func (e *Waypoint) ProbableConsumption(normalized bool, method int) (float64, error) {
	if err := e.requireInitialized("probable consumption"); err != nil {
		return 0, err
	}
	distance := kinematics.Distance(e.origin, e.target)
	if distance == 0 {
		return 0, nil
	}
	duration := distance / e.speed
	total := e.node.MovementConsumption(e.climbAngle, duration, method)
	if normalized {
		return total / duration, nil
	}
	return total, nil
}
