package mission

import (
	"fmt"
	"sort"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/logging"
)

// World owns the whole scenario: every node with its runner, the charging
// station directory, and the shared simulation clock. A single goroutine
// drives it through Step.
type World struct {
	clock     *SimClock
	publisher logging.Publisher
	stations  *fleet.Directory

	nodes   []*fleet.Node
	runners map[string]*Runner

	// runnerConfig is the template every added node's runner is built from.
	runnerConfig RunnerConfig

	tick uint64
}

// WorldConfig wires a world's collaborators. Hooks apply to every runner.
type WorldConfig struct {
	Publisher logging.Publisher
	Stations  *fleet.Directory
	Hooks     Hooks

	// SendReservation overrides direct station-inbox delivery for every node.
	SendReservation func(station *fleet.Station, r fleet.Reservation)
}

func NewWorld(cfg WorldConfig) *World {
	stations := cfg.Stations
	if stations == nil {
		stations = fleet.NewDirectory()
	}
	w := &World{
		clock:     NewSimClock(0),
		publisher: cfg.Publisher,
		stations:  stations,
		runners:   make(map[string]*Runner),
	}
	w.runnerConfig = RunnerConfig{
		Clock:           w.clock,
		Publisher:       cfg.Publisher,
		Stations:        stations,
		SendReservation: cfg.SendReservation,
		Hooks:           cfg.Hooks,
	}
	return w
}

// AddNode registers a node and builds its runner. Names must be unique.
func (w *World) AddNode(node *fleet.Node) (*Runner, error) {
	if node == nil {
		return nil, fmt.Errorf("mission: nil node")
	}
	if _, exists := w.runners[node.Name]; exists {
		return nil, fmt.Errorf("mission: duplicate node name %q", node.Name)
	}
	runner := NewRunner(node, w.runnerConfig)
	w.nodes = append(w.nodes, node)
	w.runners[node.Name] = runner
	sort.Slice(w.nodes, func(i, j int) bool { return w.nodes[i].Name < w.nodes[j].Name })
	return runner, nil
}

// Runner returns the runner for a node name.
func (w *World) Runner(name string) (*Runner, bool) {
	r, ok := w.runners[name]
	return r, ok
}

// Enqueue appends a directive to a named node's plan.
func (w *World) Enqueue(nodeName string, d directive.Directive) error {
	r, ok := w.runners[nodeName]
	if !ok {
		return fmt.Errorf("mission: unknown node %q", nodeName)
	}
	return r.Enqueue(d)
}

// Step advances every runner by dt seconds and increments the tick counter.
// Runners are stepped in name order so runs are reproducible.
func (w *World) Step(dt float64) error {
	w.tick++
	start := w.clock.Now()
	for _, node := range w.nodes {
		// Each runner advances the shared clock while sub-stepping; rewind to
		// the tick start so every node sees the same timeline.
		w.clock.now = start
		if err := w.runners[node.Name].Step(w.tick, dt); err != nil {
			return err
		}
	}
	w.clock.now = start + dt
	return nil
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// Now returns the world's simulation time in seconds.
func (w *World) Now() float64 {
	return w.clock.Now()
}

// Done reports that every runner has drained its queue.
func (w *World) Done() bool {
	for _, r := range w.runners {
		if !r.Done() {
			return false
		}
	}
	return true
}

// Settled reports that no runner will make further progress on its own.
func (w *World) Settled() bool {
	for _, r := range w.runners {
		if !r.Settled() {
			return false
		}
	}
	return true
}

// Stations returns the charging station directory.
func (w *World) Stations() *fleet.Directory {
	return w.stations
}

// Snapshot copies the world into a broadcast-friendly struct.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Tick: w.tick,
		Time: w.clock.Now(),
	}
	for _, node := range w.nodes {
		snap.Nodes = append(snap.Nodes, node.Snapshot())
	}
	for _, station := range w.stations.Stations() {
		snap.Stations = append(snap.Stations, station.Snapshot())
	}
	return snap
}

// Snapshot is the wire-facing view of the world at one tick.
type Snapshot struct {
	Tick     uint64                  `json:"tick"`
	Time     float64                 `json:"time"`
	Nodes    []fleet.NodeSnapshot    `json:"nodes"`
	Stations []fleet.StationSnapshot `json:"stations"`
}
