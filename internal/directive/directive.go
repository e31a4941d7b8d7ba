// Package directive defines the immutable descriptions of the actions a UAV
// can be told to carry out. A Directive is a kind tag plus exactly one
// kind-specific payload; it never changes after creation.
package directive

import (
	"fmt"

	"fly-and-charge/sim/internal/fleet"
)

// Kind enumerates the supported directive kinds.
type Kind string

const (
	KindWaypoint     Kind = "Waypoint"
	KindTakeoff      Kind = "Takeoff"
	KindHoldPosition Kind = "HoldPosition"
	KindCharge       Kind = "Charge"
	KindExchange     Kind = "Exchange"
	KindIdle         Kind = "Idle"
)

// Directive describes one intended action. The payload pointer matching the
// kind is set; all others are nil.
type Directive struct {
	Kind     Kind
	Waypoint *Waypoint
	Takeoff  *Takeoff
	Hold     *HoldPosition
	Charge   *Charge
	Exchange *Exchange
}

// Waypoint sends the node to a 3D target.
type Waypoint struct {
	X, Y, Z float64
}

// Takeoff moves the node vertically to a target altitude; x/y stay put.
type Takeoff struct {
	Altitude float64
}

// HoldPosition keeps the node stationary for a fixed time. The position only
// seeds the engine's coordinates; it is not flown to.
type HoldPosition struct {
	X, Y, Z float64
	Seconds float64
}

// Charge docks the node at a charging station until the battery reaches the
// target state of charge. A zero TargetPercentage means charge to full.
type Charge struct {
	Station          *fleet.Station
	TargetPercentage float64
}

// Exchange hands mission data to a peer, optionally routing this node to a
// charging station afterwards.
type Exchange struct {
	Peer              *fleet.Node
	RechargeRequested bool
}

func NewWaypoint(x, y, z float64) Directive {
	return Directive{Kind: KindWaypoint, Waypoint: &Waypoint{X: x, Y: y, Z: z}}
}

func NewTakeoff(altitude float64) Directive {
	return Directive{Kind: KindTakeoff, Takeoff: &Takeoff{Altitude: altitude}}
}

func NewHoldPosition(x, y, z, seconds float64) Directive {
	return Directive{Kind: KindHoldPosition, Hold: &HoldPosition{X: x, Y: y, Z: z, Seconds: seconds}}
}

func NewCharge(station *fleet.Station) Directive {
	return Directive{Kind: KindCharge, Charge: &Charge{Station: station}}
}

func NewExchange(peer *fleet.Node, rechargeRequested bool) Directive {
	return Directive{Kind: KindExchange, Exchange: &Exchange{Peer: peer, RechargeRequested: rechargeRequested}}
}

func NewIdle() Directive {
	return Directive{Kind: KindIdle}
}

// Validate reports whether the payload matches the kind tag. Engines refuse
// to initialize from a directive that fails this.
func (d Directive) Validate() error {
	switch d.Kind {
	case KindWaypoint:
		if d.Waypoint == nil {
			return fmt.Errorf("directive: %s missing payload", d.Kind)
		}
	case KindTakeoff:
		if d.Takeoff == nil {
			return fmt.Errorf("directive: %s missing payload", d.Kind)
		}
	case KindHoldPosition:
		if d.Hold == nil {
			return fmt.Errorf("directive: %s missing payload", d.Kind)
		}
		if d.Hold.Seconds < 0 {
			return fmt.Errorf("directive: %s negative hold duration %v", d.Kind, d.Hold.Seconds)
		}
	case KindCharge:
		if d.Charge == nil {
			return fmt.Errorf("directive: %s missing payload", d.Kind)
		}
		if d.Charge.Station == nil {
			return fmt.Errorf("directive: %s missing station", d.Kind)
		}
		if d.Charge.TargetPercentage < 0 || d.Charge.TargetPercentage > 100 {
			return fmt.Errorf("directive: %s target percentage %v outside [0, 100]", d.Kind, d.Charge.TargetPercentage)
		}
	case KindExchange:
		if d.Exchange == nil {
			return fmt.Errorf("directive: %s missing payload", d.Kind)
		}
	case KindIdle:
		// No parameters.
	default:
		return fmt.Errorf("directive: unknown kind %q", d.Kind)
	}
	return nil
}
