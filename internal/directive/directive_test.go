package directive

import (
	"testing"

	"fly-and-charge/sim/internal/energy"
	"fly-and-charge/sim/internal/fleet"
)

func TestConstructorsValidate(t *testing.T) {
	station := fleet.NewStation("pad", 0, 0, 0)
	peer := fleet.NewNode("seed", "peer", energy.DefaultProfile(), 0)

	cases := []struct {
		name string
		d    Directive
	}{
		{name: "waypoint", d: NewWaypoint(1, 2, 3)},
		{name: "takeoff", d: NewTakeoff(25)},
		{name: "hold", d: NewHoldPosition(0, 0, 10, 30)},
		{name: "charge", d: NewCharge(station)},
		{name: "exchange", d: NewExchange(peer, true)},
		{name: "idle", d: NewIdle()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.d.Validate(); err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateRejectsMismatchedPayload(t *testing.T) {
	cases := []struct {
		name string
		d    Directive
	}{
		{name: "missing waypoint payload", d: Directive{Kind: KindWaypoint}},
		{name: "missing takeoff payload", d: Directive{Kind: KindTakeoff}},
		{name: "missing hold payload", d: Directive{Kind: KindHoldPosition}},
		{name: "negative hold duration", d: Directive{Kind: KindHoldPosition, Hold: &HoldPosition{Seconds: -1}}},
		{name: "missing charge payload", d: Directive{Kind: KindCharge}},
		{name: "charge without station", d: Directive{Kind: KindCharge, Charge: &Charge{}}},
		{name: "charge target over 100", d: Directive{Kind: KindCharge, Charge: &Charge{Station: fleet.NewStation("pad", 0, 0, 0), TargetPercentage: 120}}},
		{name: "missing exchange payload", d: Directive{Kind: KindExchange}},
		{name: "unknown kind", d: Directive{Kind: "Teleport"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.d.Validate(); err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}
