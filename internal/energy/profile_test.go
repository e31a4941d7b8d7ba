package energy

import (
	"math"
	"testing"
)

func TestDefaultProfileValidates(t *testing.T) {
	if err := DefaultProfile().Validate(); err != nil {
		t.Fatalf("DefaultProfile().Validate() = %v, want nil", err)
	}
}

func TestSpeedPessimismOrdering(t *testing.T) {
	profile := DefaultProfile()
	for _, angle := range []float64{-90, -40, 0, 15, 60, 90} {
		expected := profile.Speed(angle, PessimismExpected)
		cautious := profile.Speed(angle, PessimismCautious)
		worst := profile.Speed(angle, PessimismWorst)
		if !(worst < cautious && cautious < expected) {
			t.Fatalf("angle %v: speeds not strictly ordered: worst=%v cautious=%v expected=%v", angle, worst, cautious, expected)
		}
		if worst <= 0 {
			t.Fatalf("angle %v: worst-case speed %v must stay positive", angle, worst)
		}
	}
}

func TestConsumptionMethodsOrdered(t *testing.T) {
	profile := DefaultProfile()
	expected := profile.MovementConsumption(20, 60, MethodExpected)
	confident := profile.MovementConsumption(20, 60, MethodConfidence)
	if confident <= expected {
		t.Fatalf("confidence estimate %v should exceed expected %v", confident, expected)
	}

	hover := profile.HoverConsumption(30, MethodExpected)
	if hover <= 0 {
		t.Fatalf("HoverConsumption(30) = %v, want > 0", hover)
	}
}

func TestZeroDurationConsumesNothing(t *testing.T) {
	profile := DefaultProfile()
	if got := profile.MovementConsumption(45, 0, MethodExpected); got != 0 {
		t.Fatalf("MovementConsumption(45, 0) = %v, want 0", got)
	}
	if got := profile.HoverConsumption(-1, MethodExpected); got != 0 {
		t.Fatalf("HoverConsumption(-1) = %v, want 0", got)
	}
}

func TestSampleRateDeterministicPerSeedStream(t *testing.T) {
	profile := DefaultProfile()
	a := NewDeterministicRNG("seed-1", "node.alpha")
	b := NewDeterministicRNG("seed-1", "node.alpha")
	other := NewDeterministicRNG("seed-1", "node.beta")

	first := profile.SampleMovementRate(a, 10)
	second := profile.SampleMovementRate(b, 10)
	if first != second {
		t.Fatalf("same seed stream diverged: %v vs %v", first, second)
	}
	if third := profile.SampleMovementRate(other, 10); third == first {
		t.Fatalf("independent label produced identical draw %v", third)
	}
}

// Property fuzz over climb angles and durations: every estimate and every
// stochastic draw must respect the plausibility bound.
func TestConsumptionSanityBoundFuzz(t *testing.T) {
	profile := DefaultProfile()
	rng := NewDeterministicRNG("fuzz", "bound")

	for i := 0; i < 2000; i++ {
		angle := rng.Float64()*180 - 90
		duration := rng.Float64()*7200 + 0.001
		method := i % 2

		total := profile.MovementConsumption(angle, duration, method)
		if rate := total / duration; rate < 0 || rate >= MaxSaneRate {
			t.Fatalf("movement rate %v outside [0,%v) for angle=%v duration=%v", rate, MaxSaneRate, angle, duration)
		}

		hover := profile.HoverConsumption(duration, method)
		if rate := hover / duration; rate < 0 || rate >= MaxSaneRate {
			t.Fatalf("hover rate %v outside [0,%v) for duration=%v", rate, MaxSaneRate, duration)
		}

		sampled := profile.SampleMovementRate(rng, angle)
		if sampled < 0 || sampled >= MaxSaneRate {
			t.Fatalf("sampled rate %v outside [0,%v) for angle=%v", sampled, MaxSaneRate, angle)
		}
	}
}

func TestInsaneCalibrationPanics(t *testing.T) {
	profile := Profile{
		Bands: []Band{{FromAngle: -90, ToAngle: 90, MeanRate: 2500, MeanSpeed: 10}},
		Hover: Band{MeanRate: 0.2},
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for rate above the sanity bound")
		}
	}()
	profile.MovementConsumption(0, 10, MethodExpected)
}

func TestBandLookupClampsOutOfRange(t *testing.T) {
	profile := Profile{
		Bands: []Band{
			{FromAngle: -45, ToAngle: 0, MeanRate: 0.1, MeanSpeed: 8, StdDevSpeed: 0.2},
			{FromAngle: 0, ToAngle: 45, MeanRate: 0.2, MeanSpeed: 6, StdDevSpeed: 0.2},
		},
		Hover: Band{MeanRate: 0.15},
	}.Normalized()

	low := profile.Speed(-90, PessimismExpected)
	high := profile.Speed(90, PessimismExpected)
	if math.Abs(low-8) > 1e-12 || math.Abs(high-6) > 1e-12 {
		t.Fatalf("clamped lookups = (%v, %v), want (8, 6)", low, high)
	}
}
