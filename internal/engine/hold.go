package engine

import (
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
)

// deadlineSlack is how far past a hold deadline the clock may be observed
// before the overshoot is treated as a stepper sequencing bug. The runner
// clamps tick deltas to land exactly on deadlines; anything beyond float
// noise means it skipped one.
const deadlineSlack = 1e-6

// HoldPosition keeps the node stationary until an absolute deadline,
// draining hover consumption the whole time.
type HoldPosition struct {
	base
	d        *directive.HoldPosition
	deadline float64
}

func newHoldPosition(node *fleet.Node, env Env, d *directive.HoldPosition) *HoldPosition {
	e := &HoldPosition{base: newBase(directive.KindHoldPosition, node, env), d: d}
	if d != nil {
		e.target = kinematics.Point{X: d.X, Y: d.Y, Z: d.Z}
	}
	return e
}

func (e *HoldPosition) Init() error {
	if e.d == nil {
		return fmt.Errorf("engine: %s: directive missing", e.kind)
	}
	e.deadline = e.env.now() + e.d.Seconds
	e.rate = e.node.SampleHoverRate()
	e.initialized = true
	return nil
}

func (e *HoldPosition) Commit() {
	e.node.Pitch = 0
	e.node.ClimbAngle = 0
	e.node.Speed = 0
	e.takeOwnership(e)
}

func (e *HoldPosition) Update(dt float64) {
	if dt <= 0 {
		return
	}
	e.node.Battery.Discharge(e.rate * dt)
}

func (e *HoldPosition) Completed() bool {
	if e.completed {
		return true
	}
	now := e.env.now()
	if now > e.deadline+deadlineSlack {
		panic(fmt.Sprintf("engine: hold position overran its deadline: now=%v deadline=%v", now, e.deadline))
	}
	return now >= e.deadline-kinematics.Epsilon
}

func (e *HoldPosition) OverallDuration() (float64, error) {
	if err := e.requireInitialized("overall duration"); err != nil {
		return 0, err
	}
	return e.d.Seconds, nil
}

// OverallDurationQuantile equals the nominal duration: holding position has
// no speed to be pessimistic about.
func (e *HoldPosition) OverallDurationQuantile() (float64, error) {
	return e.OverallDuration()
}

func (e *HoldPosition) RemainingTime() (float64, error) {
	if err := e.requireInitialized("remaining time"); err != nil {
		return 0, err
	}
	return e.deadline - e.env.now(), nil
}

func (e *HoldPosition) ProbableConsumption(normalized bool, method int) (float64, error) {
	if err := e.requireInitialized("probable consumption"); err != nil {
		return 0, err
	}
	duration := e.d.Seconds
	if duration == 0 {
		return 0, nil
	}
	total := e.node.HoverConsumption(duration, method)
	if normalized {
		return total / duration, nil
	}
	return total, nil
}
