package engine

import (
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
)

// Charge parks the node at a charging station until the battery reports
// full. The engine itself moves nothing and drains nothing; charging
// progress is the station's business.
type Charge struct {
	base
	d *directive.Charge

	// targetPercentage is the state of charge at which the engine completes.
	targetPercentage float64

	// startRemaining snapshots the battery when the engine activates, so the
	// total replenishment can be reported afterwards.
	startRemaining float64
}

func newCharge(node *fleet.Node, env Env, d *directive.Charge) *Charge {
	return &Charge{base: newBase(directive.KindCharge, node, env), d: d}
}

func (e *Charge) Init() error {
	if e.d == nil {
		return fmt.Errorf("engine: %s: directive missing", e.kind)
	}
	e.targetPercentage = e.d.TargetPercentage
	if e.targetPercentage == 0 {
		e.targetPercentage = 100
	}
	e.rate = 0
	e.initialized = true
	return nil
}

func (e *Charge) Commit() {
	// Cosmetic spread of docked headings, derived from the state of charge.
	e.node.Yaw = float64((int(e.node.Battery.RemainingPercentage()) / 10 * 360) % 360)
	e.node.Pitch = 0
	e.node.ClimbAngle = 0
	e.node.Speed = 0
	e.startRemaining = e.node.Battery.Remaining()
	e.takeOwnership(e)
}

func (e *Charge) Update(float64) {}

func (e *Charge) Completed() bool {
	if e.completed || e.node.Battery.IsFull() {
		return true
	}
	if !e.initialized {
		return false
	}
	// Small slack so float noise in the final charging step cannot leave the
	// battery an ulp short of the target forever.
	return e.node.Battery.RemainingPercentage() >= e.targetPercentage-1e-9
}

// OverallDuration is undefined: no forecast of station throughput exists.
func (e *Charge) OverallDuration() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

func (e *Charge) OverallDurationQuantile() (float64, error) {
	return e.OverallDuration()
}

func (e *Charge) RemainingTime() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

func (e *Charge) ProbableConsumption(bool, int) (float64, error) {
	return 0, nil
}

// ConsumptionTotal returns the energy gained since activation as a negative
// consumption, distinguishing replenishment from draw. Querying it before
// activation, or after a charge that restored nothing, is a sequencing bug.
func (e *Charge) ConsumptionTotal() float64 {
	if !e.active {
		panic("engine: charge consumption queried before activation")
	}
	gained := e.node.Battery.Remaining() - e.startRemaining
	if gained <= 0 {
		panic(fmt.Sprintf("engine: charge did not increase stored energy: gained=%v", gained))
	}
	return -gained
}

// Station returns the charging station this engine is bound to.
func (e *Charge) Station() *fleet.Station {
	if e.d == nil {
		return nil
	}
	return e.d.Station
}

// TargetPercentage returns the state of charge the engine completes at.
func (e *Charge) TargetPercentage() float64 {
	return e.targetPercentage
}

// setTargetPoint repositions the engine's target, used when a charge is
// synthesized toward a station the node has not reached yet.
func (e *Charge) setTargetPoint(p kinematics.Point) {
	e.target = p
}
