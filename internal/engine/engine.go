// Package engine binds directives to UAV nodes and executes them tick by
// tick. Each directive kind has its own engine implementing the shared
// lifecycle: initialize once, commit derived parameters onto the node once,
// update per tick, poll completion, then run exit actions and retire.
package engine

import (
	"errors"
	"fmt"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/internal/kinematics"
	"fly-and-charge/sim/logging"
)

// ErrNoForecast marks predictive queries a directive kind cannot answer:
// charge, exchange, and idle have no determined ending time. Callers decide
// whether that absence is fatal in their context.
var ErrNoForecast = errors.New("engine: no forecast for this directive kind")

// Clock is the simulation time source, in seconds. It never runs backwards.
type Clock interface {
	Now() float64
}

type ClockFunc func() float64

func (f ClockFunc) Now() float64 {
	return f()
}

// Env carries the external collaborators an engine may touch during its
// hooks. All interaction through it is fire-and-forget.
type Env struct {
	Clock     Clock
	Publisher logging.Publisher

	// Tick supplies the current tick number for published events.
	Tick func() uint64

	// NearestStation resolves the closest charging station to a position.
	NearestStation func(x, y, z float64) (*fleet.Station, bool)

	// SendReservation delivers a reservation request to a station. When nil,
	// the request is handed to the station inbox directly.
	SendReservation func(station *fleet.Station, r fleet.Reservation)

	// AbandonMission tells the mission layer this node dropped its mission.
	AbandonMission func()
}

func (e Env) now() float64 {
	if e.Clock == nil {
		return 0
	}
	return e.Clock.Now()
}

func (e Env) tick() uint64 {
	if e.Tick == nil {
		return 0
	}
	return e.Tick()
}

func (e Env) publisher() logging.Publisher {
	if e.Publisher == nil {
		return logging.NopPublisher()
	}
	return e.Publisher
}

// Engine is the lifecycle contract every directive kind implements.
type Engine interface {
	Kind() directive.Kind
	Node() *fleet.Node

	// Init derives kinematics and draws the stochastic consumption rate,
	// exactly once. It fails if the bound directive is absent.
	Init() error
	// Initialized reports whether Init already ran; synthesized engines may
	// arrive at the queue pre-initialized.
	Initialized() bool
	// Commit pushes the derived yaw/pitch/climb/speed onto the node, records
	// the execution start time, and takes ownership of the node's state.
	Commit()
	// Update advances the node's pose and battery for an elapsed dt seconds.
	Update(dt float64)

	// Completed reports the terminal latch; once true it stays true.
	Completed() bool
	// MarkCompleted latches completion directly, e.g. on mission abandonment.
	// Treated as equivalent to natural completion by all later queries.
	MarkCompleted()
	// Active reports whether Commit has run and the engine owns the node.
	Active() bool

	// Predictive queries; none of them mutates state.
	OverallDuration() (float64, error)
	OverallDurationQuantile() (float64, error)
	RemainingTime() (float64, error)
	ProbableConsumption(normalized bool, method int) (float64, error)

	// EnterActions runs exactly once at activation; ExitActions exactly once
	// at retirement, returning any follow-on engines to prepend to the
	// mission queue (order preserved; first entry runs first).
	EnterActions()
	ExitActions() []Engine

	Origin() kinematics.Point
	Target() kinematics.Point

	// PartOfMission reports whether this engine counts toward mission
	// accounting; synthesized charge-return engines do not.
	PartOfMission() bool
	SetPartOfMission(bool)
	// ReplacementNeeded reports whether mission logic should auto-generate a
	// successor when this engine completes.
	ReplacementNeeded() bool
	MarkNoReplacementNeeded()
}

// New builds the engine for a directive. The switch is exhaustive over the
// closed set of kinds.
func New(node *fleet.Node, d directive.Directive, env Env) (Engine, error) {
	if node == nil {
		return nil, fmt.Errorf("engine: nil node")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.Kind {
	case directive.KindWaypoint:
		return newWaypoint(node, env, d.Waypoint), nil
	case directive.KindTakeoff:
		return newTakeoff(node, env, d.Takeoff), nil
	case directive.KindHoldPosition:
		return newHoldPosition(node, env, d.Hold), nil
	case directive.KindCharge:
		return newCharge(node, env, d.Charge), nil
	case directive.KindExchange:
		return newExchange(node, env, d.Exchange), nil
	case directive.KindIdle:
		return newIdle(node, env), nil
	default:
		return nil, fmt.Errorf("engine: unknown directive kind %q", d.Kind)
	}
}

// base carries the state shared by every engine variant.
type base struct {
	kind directive.Kind
	node *fleet.Node
	env  Env

	origin kinematics.Point
	target kinematics.Point

	yaw        float64
	pitch      float64
	climbAngle float64
	speed      float64

	// rate is the consumption per second drawn once at initialization.
	rate      float64
	startedAt float64

	initialized bool
	active      bool
	completed   bool

	partOfMission     bool
	replacementNeeded bool
}

func newBase(kind directive.Kind, node *fleet.Node, env Env) base {
	return base{
		kind:              kind,
		node:              node,
		env:               env,
		origin:            kinematics.Point{X: node.X, Y: node.Y, Z: node.Z},
		target:            kinematics.Point{X: node.X, Y: node.Y, Z: node.Z},
		partOfMission:     true,
		replacementNeeded: true,
	}
}

func (b *base) Kind() directive.Kind      { return b.kind }
func (b *base) Initialized() bool         { return b.initialized }
func (b *base) Node() *fleet.Node         { return b.node }
func (b *base) Origin() kinematics.Point  { return b.origin }
func (b *base) Target() kinematics.Point  { return b.target }
func (b *base) Completed() bool           { return b.completed }
func (b *base) MarkCompleted()            { b.completed = true }
func (b *base) Active() bool              { return b.active }
func (b *base) PartOfMission() bool       { return b.partOfMission }
func (b *base) SetPartOfMission(v bool)   { b.partOfMission = v }
func (b *base) ReplacementNeeded() bool   { return b.replacementNeeded }
func (b *base) MarkNoReplacementNeeded()  { b.replacementNeeded = false }
func (b *base) EnterActions()             {}
func (b *base) ExitActions() []Engine     { return nil }

// takeOwnership records the activation on both sides of the engine-node
// relationship. Exactly one engine owns a node at any moment.
func (b *base) takeOwnership(owner Engine) {
	b.startedAt = b.env.now()
	b.active = true
	b.node.ActiveEngine = owner
}

func (b *base) requireInitialized(query string) error {
	if !b.initialized {
		return fmt.Errorf("engine: %s queried before initialization: %s", b.kind, query)
	}
	return nil
}

func (b *base) actorRef() logging.EntityRef {
	return logging.EntityRef{ID: b.node.ID, Kind: logging.EntityKindUAV}
}
