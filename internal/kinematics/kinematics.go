// Package kinematics holds the pure flight-geometry math shared by every
// directive engine: displacement-derived heading, climb angle, pitch, and
// epsilon-snapped distances.
package kinematics

import "math"

// Epsilon is the threshold below which axis deltas and distances are snapped
// to exactly zero, keeping atan2 quiet on near-stationary legs.
const Epsilon = 1e-10

// Point is a position in local meters.
type Point struct {
	X, Y, Z float64
}

// Snap returns v, or exactly zero when |v| is below Epsilon.
func Snap(v float64) float64 {
	if math.Abs(v) < Epsilon {
		return 0
	}
	return v
}

// Distance returns the Euclidean distance between two points, snapped to
// zero below Epsilon.
func Distance(from, to Point) float64 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dz := to.Z - from.Z
	return Snap(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

// HorizontalDistance returns the ground-plane distance between two points,
// snapped to zero below Epsilon.
func HorizontalDistance(from, to Point) float64 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	return Snap(math.Hypot(dx, dy))
}

// ManhattanDistance returns the sum of absolute per-axis deltas. Arrival
// checks compare it against Epsilon.
func ManhattanDistance(from, to Point) float64 {
	return math.Abs(to.X-from.X) + math.Abs(to.Y-from.Y) + math.Abs(to.Z-from.Z)
}

// Heading returns the yaw in degrees for a ground-plane displacement,
// normalized to [0, 360). Axis deltas below Epsilon are treated as zero.
func Heading(dx, dy float64) float64 {
	dx = Snap(dx)
	dy = Snap(dy)
	yaw := math.Atan2(dy, dx) / math.Pi * 180
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// ClimbAngle returns the angle of a displacement above or below the
// horizontal plane in degrees, range (-90, 90]. Inputs below Epsilon are
// treated as zero.
func ClimbAngle(dz, horizontal float64) float64 {
	dz = Snap(dz)
	horizontal = Snap(horizontal)
	return math.Atan2(dz, horizontal) / math.Pi * 180
}

// PitchFromClimb returns the pitch matching a climb angle. Pitch is the
// inverse of the climb angle by airframe convention.
func PitchFromClimb(climbAngle float64) float64 {
	return -climbAngle
}

// StepComponents decomposes a travelled distance along a frozen yaw and
// climb angle (both degrees) into x/y/z deltas.
func StepComponents(distance, yaw, climbAngle float64) (dx, dy, dz float64) {
	dz = distance * math.Sin(math.Pi*climbAngle/180)
	horizontal := distance * math.Cos(math.Pi*climbAngle/180)
	dx = horizontal * math.Cos(math.Pi*yaw/180)
	dy = horizontal * math.Sin(math.Pi*yaw/180)
	return dx, dy, dz
}
