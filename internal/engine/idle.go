package engine

import (
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/fleet"
)

// Idle parks the node with a zero consumption rate until an external actor
// latches it done. The update is kept for interface symmetry; it drains
// nothing.
type Idle struct {
	base
}

func newIdle(node *fleet.Node, env Env) *Idle {
	return &Idle{base: newBase(directive.KindIdle, node, env)}
}

func (e *Idle) Init() error {
	e.rate = 0
	e.initialized = true
	return nil
}

func (e *Idle) Commit() {
	e.takeOwnership(e)
}

func (e *Idle) Update(dt float64) {
	if dt <= 0 {
		return
	}
	e.node.Battery.Discharge(e.rate * dt)
}

func (e *Idle) OverallDuration() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

func (e *Idle) OverallDurationQuantile() (float64, error) {
	return e.OverallDuration()
}

func (e *Idle) RemainingTime() (float64, error) {
	return 0, fmt.Errorf("%w: %s has no determined ending time", ErrNoForecast, e.kind)
}

func (e *Idle) ProbableConsumption(bool, int) (float64, error) {
	return 0, nil
}
