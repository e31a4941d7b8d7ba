package mission

import (
	"context"
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/engine"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/logging"
	"fly-and-charge/sim/logging/flight"
	"fly-and-charge/sim/logging/power"
)

// budgetEpsilon is the leftover tick budget below which the runner stops
// sub-stepping. Purely float noise; no engine can do anything with it.
const budgetEpsilon = 1e-12

// maxRetirementsPerStep bounds how many engines may retire inside a single
// tick. Zero-duration work retires without consuming budget, so a
// replacement hook that keeps producing it would otherwise spin forever.
const maxRetirementsPerStep = 1000

// SimClock is the per-simulation time source, in seconds since scenario
// start. The runner is its only writer.
type SimClock struct {
	now float64
}

func NewSimClock(start float64) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() float64 {
	if c == nil {
		return 0
	}
	return c.now
}

func (c *SimClock) Advance(dt float64) {
	if c == nil || dt <= 0 {
		return
	}
	c.now += dt
}

// Hooks let scenario logic steer a runner without subclassing it. Any field
// may be nil.
type Hooks struct {
	// Replacement is consulted when an engine flagged for replacement
	// completes. A non-nil directive is appended to the back of the queue.
	Replacement func(completed engine.Engine) *directive.Directive

	// ShouldComplete is polled each sub-step for the active engine. Returning
	// true latches completion; used for kinds with no natural ending, like
	// exchange and idle.
	ShouldComplete func(active engine.Engine) bool
}

// RunnerConfig wires a runner's collaborators.
type RunnerConfig struct {
	Clock     *SimClock
	Publisher logging.Publisher
	Stations  *fleet.Directory

	// SendReservation overrides direct station-inbox delivery, e.g. to route
	// reservations through a transport. Nil means deliver directly.
	SendReservation func(station *fleet.Station, r fleet.Reservation)

	Hooks Hooks
}

// Runner executes one node's directive queue. At most one engine is active
// at a time; the runner activates, updates, and retires engines, and is the
// only caller of their lifecycle methods.
type Runner struct {
	node  *fleet.Node
	queue queue

	clock           *SimClock
	publisher       logging.Publisher
	stations        *fleet.Directory
	sendReservation func(station *fleet.Station, r fleet.Reservation)
	hooks           Hooks

	active      engine.Engine
	currentTick uint64

	// chargeRestored accumulates energy transferred to the node during the
	// active charge, for the completion event.
	chargeRestored float64

	depletionReported bool
	missionAbandoned  bool
}

func NewRunner(node *fleet.Node, cfg RunnerConfig) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = NewSimClock(0)
	}
	return &Runner{
		node:            node,
		clock:           clock,
		publisher:       cfg.Publisher,
		stations:        cfg.Stations,
		sendReservation: cfg.SendReservation,
		hooks:           cfg.Hooks,
	}
}

// Enqueue validates a directive and appends it to the back of the queue.
func (r *Runner) Enqueue(d directive.Directive) error {
	if err := d.Validate(); err != nil {
		return err
	}
	r.queue.pushDirective(d)
	return nil
}

// Node returns the node this runner drives.
func (r *Runner) Node() *fleet.Node {
	return r.node
}

// Active returns the currently executing engine, or nil between directives.
func (r *Runner) Active() engine.Engine {
	return r.active
}

// QueueLen reports how many entries wait behind the active engine.
func (r *Runner) QueueLen() int {
	return r.queue.len()
}

// Done reports that nothing is active and nothing is queued.
func (r *Runner) Done() bool {
	return r.active == nil && r.queue.len() == 0
}

// Settled reports that the runner will never do anything further on its
// own: either drained, or parked on a terminal idle with nothing queued.
func (r *Runner) Settled() bool {
	if r.Done() {
		return true
	}
	return r.queue.len() == 0 && r.active != nil && r.active.Kind() == directive.KindIdle
}

// Now returns the runner's simulation time.
func (r *Runner) Now() float64 {
	return r.clock.Now()
}

// MissionAbandoned reports whether the plan was dropped for a charge return.
func (r *Runner) MissionAbandoned() bool {
	return r.missionAbandoned
}

// LatchActive marks the active engine completed. The retirement itself
// happens on the next Step.
func (r *Runner) LatchActive() {
	if r.active != nil {
		r.active.MarkCompleted()
	}
}

// Step advances the node by dt seconds of simulation time. The delta is
// split into sub-steps clamped to the active engine's forecast remaining
// time, so updates land exactly on hold deadlines and arrivals instead of
// overshooting them.
func (r *Runner) Step(tick uint64, dt float64) error {
	if dt < 0 {
		return fmt.Errorf("mission: negative step dt %v", dt)
	}
	r.currentTick = tick

	budget := dt
	retirements := 0
	for {
		if r.active == nil {
			if !r.activateNext() {
				// Nothing to do; the node sits where it is.
				r.clock.Advance(budget)
				return nil
			}
		}

		step := budget
		if remaining, err := r.active.RemainingTime(); err == nil && remaining < step {
			step = remaining
		}
		if step < 0 {
			step = 0
		}

		if ch, ok := r.active.(*engine.Charge); ok && step > 0 {
			// Clamp to the time the battery actually needs, so leftover
			// budget flows to whatever runs after the charge.
			station := ch.Station()
			if station.ChargeRate > 0 {
				targetRemaining := r.node.Battery.Capacity() * ch.TargetPercentage() / 100
				headroom := targetRemaining - r.node.Battery.Remaining()
				if headroom < 0 {
					headroom = 0
				}
				if toTarget := headroom / station.ChargeRate; toTarget < step {
					step = toTarget
				}
			}
			r.chargeRestored += station.ChargeDocked(r.node, step)
		}
		r.active.Update(step)
		r.clock.Advance(step)
		budget -= step

		r.checkDepletion()

		if r.hooks.ShouldComplete != nil && r.hooks.ShouldComplete(r.active) {
			r.active.MarkCompleted()
		}
		if r.active.Completed() {
			r.retireActive()
			retirements++
			if retirements > maxRetirementsPerStep {
				return fmt.Errorf("mission: node %s retired more than %d engines in one tick", r.node.Name, maxRetirementsPerStep)
			}
			continue
		}
		if budget <= budgetEpsilon {
			return nil
		}
		if step == 0 {
			// Forecast said zero time remains yet the engine did not finish;
			// burning the rest of the budget would loop forever.
			return fmt.Errorf("mission: node %s stalled on %s with budget left", r.node.Name, r.active.Kind())
		}
	}
}

// activateNext pops the queue head and runs the activation sequence:
// build (for plan entries), initialize, enter actions, commit. Reports
// whether an engine became active.
func (r *Runner) activateNext() bool {
	head, ok := r.queue.popFront()
	if !ok {
		return false
	}

	next := head.engine
	if next == nil {
		built, err := engine.New(r.node, head.d, r.env())
		if err != nil {
			// Enqueue validated the directive; a build failure here is a
			// runner defect, not bad input.
			panic(fmt.Sprintf("mission: queued directive failed to build: %v", err))
		}
		next = built
	}
	if !next.Initialized() {
		if err := next.Init(); err != nil {
			panic(fmt.Sprintf("mission: queued directive failed to initialize: %v", err))
		}
	}

	r.active = next
	r.chargeRestored = 0
	next.EnterActions()
	next.Commit()

	target := next.Target()
	flight.DirectiveStarted(context.Background(), r.publisher, r.currentTick, r.actorRef(), flight.DirectivePayload{
		Kind:          string(next.Kind()),
		TargetX:       target.X,
		TargetY:       target.Y,
		TargetZ:       target.Z,
		PartOfMission: next.PartOfMission(),
	})
	return true
}

// retireActive runs the exit sequence for the completed engine: exit
// actions (prepending any spawned follow-up engines), the completion event,
// and the replacement hook.
func (r *Runner) retireActive() {
	retired := r.active
	r.active = nil
	r.node.ActiveEngine = nil

	spawned := retired.ExitActions()
	r.queue.prependEngines(spawned)

	if ch, ok := retired.(*engine.Charge); ok && r.chargeRestored > 0 {
		power.ChargeFinished(context.Background(), r.publisher, r.currentTick, r.actorRef(), power.ChargeFinishedPayload{
			StationID:   ch.Station().ID,
			RestoredMAh: r.chargeRestored,
		})
	}

	target := retired.Target()
	flight.DirectiveCompleted(context.Background(), r.publisher, r.currentTick, r.actorRef(), flight.DirectivePayload{
		Kind:          string(retired.Kind()),
		TargetX:       target.X,
		TargetY:       target.Y,
		TargetZ:       target.Z,
		PartOfMission: retired.PartOfMission(),
	})

	if retired.ReplacementNeeded() && r.hooks.Replacement != nil {
		if d := r.hooks.Replacement(retired); d != nil {
			r.queue.pushDirective(*d)
		}
	}
}

// checkDepletion reports an empty battery exactly once per runner.
func (r *Runner) checkDepletion() {
	if r.depletionReported || !r.node.Battery.IsEmpty() {
		return
	}
	r.depletionReported = true
	power.BatteryDepleted(context.Background(), r.publisher, r.currentTick, r.actorRef(), power.DepletionPayload{
		X: r.node.X,
		Y: r.node.Y,
		Z: r.node.Z,
	})
}

// abandonMission drops the queued plan, keeping synthesized entries such as
// the charge-return chain.
func (r *Runner) abandonMission() {
	r.queue.dropMissionEntries()
	r.missionAbandoned = true
}

func (r *Runner) env() engine.Env {
	env := engine.Env{
		Clock:           r.clock,
		Publisher:       r.publisher,
		Tick:            func() uint64 { return r.currentTick },
		SendReservation: r.sendReservation,
		AbandonMission:  r.abandonMission,
	}
	if r.stations != nil {
		env.NearestStation = r.stations.Nearest
	}
	return env
}

func (r *Runner) actorRef() logging.EntityRef {
	return logging.EntityRef{ID: r.node.ID, Kind: logging.EntityKindUAV}
}
