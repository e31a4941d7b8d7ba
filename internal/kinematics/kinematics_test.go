package kinematics

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		from Point
		to   Point
		want float64
	}{
		{name: "pythagorean", from: Point{}, to: Point{X: 3, Y: 4}, want: 5},
		{name: "vertical", from: Point{Z: 2}, to: Point{Z: 12}, want: 10},
		{name: "identical", from: Point{X: 1, Y: 1, Z: 1}, to: Point{X: 1, Y: 1, Z: 1}, want: 0},
		{name: "sub-epsilon snaps to zero", from: Point{}, to: Point{X: 1e-12}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.from, tc.to)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Distance(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestHeading(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
		want   float64
	}{
		{name: "east", dx: 1, dy: 0, want: 0},
		{name: "north", dx: 0, dy: 1, want: 90},
		{name: "west", dx: -1, dy: 0, want: 180},
		{name: "south normalizes", dx: 0, dy: -1, want: 270},
		{name: "diagonal", dx: 1, dy: 1, want: 45},
		{name: "noise snapped", dx: 1e-12, dy: 1e-12, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Heading(tc.dx, tc.dy)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Heading(%v, %v) = %v, want %v", tc.dx, tc.dy, got, tc.want)
			}
			if got < 0 || got >= 360 {
				t.Fatalf("Heading(%v, %v) = %v outside [0,360)", tc.dx, tc.dy, got)
			}
		})
	}
}

func TestClimbAngle(t *testing.T) {
	cases := []struct {
		name       string
		dz         float64
		horizontal float64
		want       float64
	}{
		{name: "level", dz: 0, horizontal: 10, want: 0},
		{name: "straight up", dz: 10, horizontal: 0, want: 90},
		{name: "straight down", dz: -10, horizontal: 0, want: -90},
		{name: "forty-five", dz: 5, horizontal: 5, want: 45},
		{name: "noise snapped", dz: 1e-12, horizontal: 10, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClimbAngle(tc.dz, tc.horizontal)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ClimbAngle(%v, %v) = %v, want %v", tc.dz, tc.horizontal, got, tc.want)
			}
		})
	}
}

func TestPitchFromClimb(t *testing.T) {
	if got := PitchFromClimb(30); got != -30 {
		t.Fatalf("PitchFromClimb(30) = %v, want -30", got)
	}
	if got := PitchFromClimb(-90); got != 90 {
		t.Fatalf("PitchFromClimb(-90) = %v, want 90", got)
	}
}

func TestStepComponentsRecomposeDistance(t *testing.T) {
	for _, yaw := range []float64{0, 33, 90, 215, 359} {
		for _, climb := range []float64{-90, -45, 0, 12, 90} {
			dx, dy, dz := StepComponents(7.5, yaw, climb)
			norm := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if math.Abs(norm-7.5) > 1e-9 {
				t.Fatalf("StepComponents(7.5, %v, %v) norm = %v, want 7.5", yaw, climb, norm)
			}
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	got := ManhattanDistance(Point{X: 1, Y: -2, Z: 3}, Point{X: 2, Y: 2, Z: 1})
	if math.Abs(got-7) > 1e-12 {
		t.Fatalf("ManhattanDistance = %v, want 7", got)
	}
}
