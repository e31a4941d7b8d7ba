package mission

import (
	"math"
	"testing"

	"fly-and-charge/sim/internal/directive"
	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/engine"
	"fly-and-charge/sim/internal/fleet"
	"fly-and-charge/sim/logging"
	"fly-and-charge/sim/logging/flight"
	"fly-and-charge/sim/logging/power"
	"fly-and-charge/sim/logging/sinks"
)

func newTestNode(name string, capacity float64) *fleet.Node {
	return fleet.NewNode("mission-test", name, energy.DefaultProfile(), capacity)
}

func newTestPublisher() (*sinks.MemorySink, logging.Publisher) {
	sink := sinks.NewMemorySink()
	return sink, logging.NewFanout(nil, logging.SeverityDebug, sink)
}

func stepUntilDone(t *testing.T, r *Runner, dt float64, maxSteps int) int {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		if r.Done() {
			return i
		}
		if err := r.Step(uint64(i+1), dt); err != nil {
			t.Fatalf("Step(%d) failed: %v", i+1, err)
		}
	}
	if !r.Done() {
		t.Fatalf("runner not done after %d steps of %v", maxSteps, dt)
	}
	return maxSteps
}

func TestRunnerExecutesPlanInOrder(t *testing.T) {
	sink, pub := newTestPublisher()
	node := newTestNode("uav-1", 5200)
	r := NewRunner(node, RunnerConfig{Publisher: pub})

	plan := []directive.Directive{
		directive.NewTakeoff(10),
		directive.NewWaypoint(3, 4, 10),
		directive.NewHoldPosition(3, 4, 10, 5),
	}
	for _, d := range plan {
		if err := r.Enqueue(d); err != nil {
			t.Fatalf("Enqueue(%s) failed: %v", d.Kind, err)
		}
	}

	stepUntilDone(t, r, 0.5, 10000)

	if node.X != 3 || node.Y != 4 || node.Z != 10 {
		t.Fatalf("final pose = (%v,%v,%v), want (3,4,10)", node.X, node.Y, node.Z)
	}
	if node.ActiveEngine != nil {
		t.Fatal("retired runner should have cleared the node's engine handle")
	}

	started := sink.EventsOfType(flight.EventDirectiveStarted)
	if len(started) != len(plan) {
		t.Fatalf("started events = %d, want %d", len(started), len(plan))
	}
	for i, d := range plan {
		payload := started[i].Payload.(flight.DirectivePayload)
		if payload.Kind != string(d.Kind) {
			t.Fatalf("started[%d].Kind = %s, want %s", i, payload.Kind, d.Kind)
		}
	}
	if completed := sink.EventsOfType(flight.EventDirectiveCompleted); len(completed) != len(plan) {
		t.Fatalf("completed events = %d, want %d", len(completed), len(plan))
	}
}

func TestRunnerLandsExactlyOnHoldDeadline(t *testing.T) {
	_, pub := newTestPublisher()
	node := newTestNode("uav-2", 5200)
	r := NewRunner(node, RunnerConfig{Publisher: pub})
	if err := r.Enqueue(directive.NewHoldPosition(0, 0, 0, 0.3)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if err := r.Step(1, 0.25); err != nil {
		t.Fatalf("Step(1) failed: %v", err)
	}
	if r.Done() {
		t.Fatal("hold finished early")
	}
	if err := r.Step(2, 0.25); err != nil {
		t.Fatalf("Step(2) failed: %v", err)
	}
	if !r.Done() {
		t.Fatal("hold should finish inside the second step")
	}
	if got := r.Now(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("Now() = %v, want 0.5", got)
	}
}

func TestRunnerIdlesWithEmptyQueue(t *testing.T) {
	node := newTestNode("uav-3", 5200)
	r := NewRunner(node, RunnerConfig{})
	if err := r.Step(1, 2); err != nil {
		t.Fatalf("Step with empty queue failed: %v", err)
	}
	if got := r.Now(); got != 2 {
		t.Fatalf("Now() = %v, want 2", got)
	}
	if node.X != 0 || node.Y != 0 || node.Z != 0 {
		t.Fatal("node moved with nothing queued")
	}
}

func TestRunnerChargeReturnFlow(t *testing.T) {
	sink, pub := newTestPublisher()
	station := fleet.NewStation("pad-a", 30, 0, 0)
	station.ChargeRate = 50
	stations := fleet.NewDirectory(station)

	node := newTestNode("uav-4", 5200)
	node.Battery.Discharge(500)
	node.MissionData = []byte("survey-grid")
	peer := newTestNode("uav-5", 5200)

	r := NewRunner(node, RunnerConfig{
		Publisher: pub,
		Stations:  stations,
		Hooks: Hooks{
			ShouldComplete: func(active engine.Engine) bool {
				return active.Kind() == directive.KindExchange
			},
		},
	})

	if err := r.Enqueue(directive.NewWaypoint(10, 0, 0)); err != nil {
		t.Fatalf("Enqueue waypoint failed: %v", err)
	}
	if err := r.Enqueue(directive.NewExchange(peer, true)); err != nil {
		t.Fatalf("Enqueue exchange failed: %v", err)
	}
	// Should be dropped when the exchange abandons the mission.
	if err := r.Enqueue(directive.NewWaypoint(500, 500, 0)); err != nil {
		t.Fatalf("Enqueue tail waypoint failed: %v", err)
	}

	for i := 0; i < 500; i++ {
		if err := r.Step(uint64(i+1), 1); err != nil {
			t.Fatalf("Step(%d) failed: %v", i+1, err)
		}
		if active := r.Active(); active != nil && active.Kind() == directive.KindIdle && node.Battery.IsFull() {
			break
		}
	}

	if !r.MissionAbandoned() {
		t.Fatal("exchange with recharge should abandon the mission")
	}
	if node.X != 30 || node.Y != 0 || node.Z != 0 {
		t.Fatalf("node at (%v,%v,%v), want parked at the station (30,0,0)", node.X, node.Y, node.Z)
	}
	if !node.Battery.IsFull() {
		t.Fatalf("battery = %v, want full after charging", node.Battery.Remaining())
	}
	if active := r.Active(); active == nil || active.Kind() != directive.KindIdle {
		t.Fatal("node should end up idling at the station")
	}
	if r.QueueLen() != 0 {
		t.Fatalf("queue = %d entries, want the dropped plan gone", r.QueueLen())
	}
	if string(peer.MissionData) != "survey-grid" {
		t.Fatal("mission data should have moved to the peer")
	}

	if reservations := station.Reservations(); len(reservations) != 1 {
		t.Fatalf("station reservations = %d, want 1", len(reservations))
	}
	if events := sink.EventsOfType(power.EventChargeFinished); len(events) != 1 {
		t.Fatalf("charge-finished events = %d, want 1", len(events))
	}
	if events := sink.EventsOfType(flight.EventMissionAbandoned); len(events) != 1 {
		t.Fatalf("mission-abandoned events = %d, want 1", len(events))
	}
}

func TestRunnerReplacementHook(t *testing.T) {
	sink, pub := newTestPublisher()
	node := newTestNode("uav-6", 5200)

	issued := false
	r := NewRunner(node, RunnerConfig{
		Publisher: pub,
		Hooks: Hooks{
			Replacement: func(completed engine.Engine) *directive.Directive {
				if issued {
					return nil
				}
				issued = true
				d := directive.NewHoldPosition(node.X, node.Y, node.Z, 1)
				return &d
			},
		},
	})
	if err := r.Enqueue(directive.NewTakeoff(5)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	stepUntilDone(t, r, 0.5, 10000)

	started := sink.EventsOfType(flight.EventDirectiveStarted)
	if len(started) != 2 {
		t.Fatalf("started events = %d, want takeoff plus replacement", len(started))
	}
	if payload := started[1].Payload.(flight.DirectivePayload); payload.Kind != string(directive.KindHoldPosition) {
		t.Fatalf("replacement kind = %s, want %s", payload.Kind, directive.KindHoldPosition)
	}
}

func TestRunnerReportsDepletionOnce(t *testing.T) {
	sink, pub := newTestPublisher()
	node := newTestNode("uav-7", 5200)
	node.Battery.Discharge(5199.9)

	r := NewRunner(node, RunnerConfig{Publisher: pub})
	if err := r.Enqueue(directive.NewHoldPosition(0, 0, 0, 1000)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		if err := r.Step(uint64(i+1), 1); err != nil {
			t.Fatalf("Step(%d) failed: %v", i+1, err)
		}
	}

	if !node.Battery.IsEmpty() {
		t.Fatalf("battery = %v, want empty", node.Battery.Remaining())
	}
	if events := sink.EventsOfType(power.EventBatteryDepleted); len(events) != 1 {
		t.Fatalf("depletion events = %d, want exactly 1", len(events))
	}
}

func TestQueueDropKeepsSpawnedEntries(t *testing.T) {
	node := newTestNode("uav-8", 5200)
	spawned, err := engine.New(node, directive.NewIdle(), engine.Env{})
	if err != nil {
		t.Fatalf("New idle failed: %v", err)
	}
	spawned.SetPartOfMission(false)

	var q queue
	q.pushDirective(directive.NewWaypoint(1, 0, 0))
	q.prependEngines([]engine.Engine{spawned})
	q.pushDirective(directive.NewWaypoint(2, 0, 0))

	if dropped := q.dropMissionEntries(); dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if q.len() != 1 {
		t.Fatalf("queue length = %d, want the spawned entry kept", q.len())
	}
	head, ok := q.popFront()
	if !ok || head.engine != spawned {
		t.Fatal("surviving entry should be the spawned engine")
	}
}

func TestWorldStepsNodesDeterministically(t *testing.T) {
	_, pub := newTestPublisher()
	w := NewWorld(WorldConfig{Publisher: pub})

	alpha := newTestNode("alpha", 5200)
	beta := newTestNode("beta", 5200)
	if _, err := w.AddNode(beta); err != nil {
		t.Fatalf("AddNode(beta) failed: %v", err)
	}
	if _, err := w.AddNode(alpha); err != nil {
		t.Fatalf("AddNode(alpha) failed: %v", err)
	}
	if _, err := w.AddNode(newTestNode("alpha", 5200)); err == nil {
		t.Fatal("duplicate node name should be rejected")
	}

	if err := w.Enqueue("alpha", directive.NewTakeoff(5)); err != nil {
		t.Fatalf("Enqueue(alpha) failed: %v", err)
	}
	if err := w.Enqueue("ghost", directive.NewIdle()); err == nil {
		t.Fatal("unknown node name should be rejected")
	}

	for i := 0; i < 100 && !w.Done(); i++ {
		if err := w.Step(0.5); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if !w.Done() {
		t.Fatal("world should drain alpha's one-directive plan")
	}
	if alpha.Z != 5 {
		t.Fatalf("alpha altitude = %v, want 5", alpha.Z)
	}
	if beta.Z != 0 {
		t.Fatalf("beta altitude = %v, want 0", beta.Z)
	}

	snap := w.Snapshot()
	if len(snap.Nodes) != 2 {
		t.Fatalf("snapshot nodes = %d, want 2", len(snap.Nodes))
	}
	if snap.Nodes[0].Name != "alpha" || snap.Nodes[1].Name != "beta" {
		t.Fatalf("snapshot order = [%s, %s], want name order", snap.Nodes[0].Name, snap.Nodes[1].Name)
	}
	if snap.Tick != w.Tick() {
		t.Fatalf("snapshot tick = %d, want %d", snap.Tick, w.Tick())
	}
}
