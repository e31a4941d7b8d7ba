// Package fleet holds the mutable entities the execution engines act on:
// UAV nodes with pose and battery, and the charging stations they return to.
package fleet

import (
	"math/rand"

	"github.com/google/uuid"

	"fly-and-charge/sim/internal/energy"
)

const DefaultBatteryCapacity = 5200.0 // mAh

// Node is one UAV. The currently active execution engine is the sole writer
// of pose, orientation, speed, and battery for the duration of its activity;
// the ActiveEngine handle makes that ownership explicit.
type Node struct {
	ID   string
	Name string

	// Pose in local meters, orientation in degrees.
	X, Y, Z    float64
	Yaw        float64
	Pitch      float64
	ClimbAngle float64
	Speed      float64 // m/s, committed by the active engine

	Battery *Battery
	Profile energy.Profile

	// ActiveEngine records which engine currently owns this node's state.
	// Exactly one engine may hold it at a time.
	ActiveEngine any

	// MissionData is the opaque serialized mission payload handed to a peer
	// during an exchange.
	MissionData []byte

	rng *rand.Rand
}

// NewNode builds a node with its own deterministic sampling stream derived
// from the scenario seed and the node name.
func NewNode(seed, name string, profile energy.Profile, batteryCapacity float64) *Node {
	return &Node{
		ID:      uuid.NewString(),
		Name:    name,
		Battery: NewBattery(batteryCapacity),
		Profile: profile.Normalized(),
		rng:     energy.NewDeterministicRNG(seed, "node."+name),
	}
}

// SpeedFor returns the achievable speed at a climb angle. Pessimism level 0
// is the expected speed, 2 the worst case used for quantile durations.
func (n *Node) SpeedFor(climbAngle float64, pessimism int) float64 {
	return n.Profile.Speed(climbAngle, pessimism)
}

// MovementConsumption estimates the total draw for a moving leg.
func (n *Node) MovementConsumption(climbAngle, duration float64, method int) float64 {
	return n.Profile.MovementConsumption(climbAngle, duration, method)
}

// HoverConsumption estimates the total draw for holding position.
func (n *Node) HoverConsumption(duration float64, method int) float64 {
	return n.Profile.HoverConsumption(duration, method)
}

// SampleMovementRate draws the stochastic per-second rate for a moving leg.
// Engines call it exactly once, at initialization.
func (n *Node) SampleMovementRate(climbAngle float64) float64 {
	return n.Profile.SampleMovementRate(n.rng, climbAngle)
}

// SampleHoverRate draws the stochastic per-second rate for a stationary hold.
func (n *Node) SampleHoverRate() float64 {
	return n.Profile.SampleHoverRate(n.rng)
}

// TransferMissionDataTo moves this node's mission payload to a peer. The
// send is fire-and-forget; the node keeps no copy.
func (n *Node) TransferMissionDataTo(peer *Node) {
	if n == nil || peer == nil || n.MissionData == nil {
		return
	}
	peer.MissionData = n.MissionData
	n.MissionData = nil
}

// Snapshot copies the node into a broadcast-friendly struct.
func (n *Node) Snapshot() NodeSnapshot {
	return NodeSnapshot{
		ID:                n.ID,
		Name:              n.Name,
		X:                 n.X,
		Y:                 n.Y,
		Z:                 n.Z,
		Yaw:               n.Yaw,
		Pitch:             n.Pitch,
		ClimbAngle:        n.ClimbAngle,
		Speed:             n.Speed,
		BatteryRemaining:  n.Battery.Remaining(),
		BatteryPercentage: n.Battery.RemainingPercentage(),
	}
}

// NodeSnapshot is the wire-facing view of a node.
type NodeSnapshot struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Z                 float64 `json:"z"`
	Yaw               float64 `json:"yaw"`
	Pitch             float64 `json:"pitch"`
	ClimbAngle        float64 `json:"climbAngle"`
	Speed             float64 `json:"speed"`
	BatteryRemaining  float64 `json:"batteryRemaining"`
	BatteryPercentage float64 `json:"batteryPercentage"`
}
