// Package energy models a UAV's calibrated power draw: achievable speed and
// expected consumption by climb angle, plus the stochastic per-second draw
// sampled once per executed directive.
package energy

import (
	"fmt"
	"math/rand"
	"sort"
)

// MaxSaneRate bounds any physically plausible per-second draw. A computed
// rate at or above it is a modeling defect, not a runtime condition.
const MaxSaneRate = 1000.0

// Pessimism levels for speed lookups.
const (
	PessimismExpected = 0 // mean achievable speed
	PessimismCautious = 1 // one sigma below the mean
	PessimismWorst    = 2 // two sigma below the mean
)

// Estimation methods for consumption forecasts.
const (
	MethodExpected   = 0 // calibrated mean
	MethodConfidence = 1 // mean plus one sigma, for conservative planning
)

// Band is one calibrated measurement row: it applies to climb angles in
// [FromAngle, ToAngle] and carries the gaussian parameters observed there.
type Band struct {
	FromAngle float64 `yaml:"fromAngle" json:"fromAngle"`
	ToAngle   float64 `yaml:"toAngle" json:"toAngle"`
	// MeanRate and StdDevRate describe the per-second draw in mAh/s.
	MeanRate   float64 `yaml:"meanRate" json:"meanRate"`
	StdDevRate float64 `yaml:"stdDevRate" json:"stdDevRate"`
	// MeanSpeed and StdDevSpeed describe the achievable speed in m/s.
	MeanSpeed   float64 `yaml:"meanSpeed" json:"meanSpeed"`
	StdDevSpeed float64 `yaml:"stdDevSpeed" json:"stdDevSpeed"`
}

// Profile is a node's calibration: movement bands over the full climb-angle
// range plus a dedicated hover row.
type Profile struct {
	Bands []Band `yaml:"bands" json:"bands"`
	Hover Band   `yaml:"hover" json:"hover"`
}

// DefaultProfile returns the stock quadrotor calibration. Descending flight
// draws the least, level cruise sits in the middle, and vertical climbs are
// the most expensive. Values are mAh/s and m/s.
func DefaultProfile() Profile {
	return Profile{
		Bands: []Band{
			{FromAngle: -90, ToAngle: -75, MeanRate: 0.147, StdDevRate: 0.012, MeanSpeed: 3.0, StdDevSpeed: 0.11},
			{FromAngle: -75, ToAngle: -30, MeanRate: 0.158, StdDevRate: 0.013, MeanSpeed: 7.4, StdDevSpeed: 0.24},
			{FromAngle: -30, ToAngle: -5, MeanRate: 0.172, StdDevRate: 0.014, MeanSpeed: 10.9, StdDevSpeed: 0.31},
			{FromAngle: -5, ToAngle: 5, MeanRate: 0.185, StdDevRate: 0.015, MeanSpeed: 12.1, StdDevSpeed: 0.33},
			{FromAngle: 5, ToAngle: 30, MeanRate: 0.209, StdDevRate: 0.017, MeanSpeed: 9.5, StdDevSpeed: 0.29},
			{FromAngle: 30, ToAngle: 75, MeanRate: 0.231, StdDevRate: 0.019, MeanSpeed: 5.2, StdDevSpeed: 0.19},
			{FromAngle: 75, ToAngle: 90, MeanRate: 0.248, StdDevRate: 0.021, MeanSpeed: 2.6, StdDevSpeed: 0.09},
		},
		Hover: Band{MeanRate: 0.178, StdDevRate: 0.014},
	}
}

// Normalized returns a copy with the bands sorted by FromAngle and any
// missing hover row backfilled from the level band.
func (p Profile) Normalized() Profile {
	out := p
	out.Bands = append([]Band(nil), p.Bands...)
	sort.Slice(out.Bands, func(i, j int) bool {
		return out.Bands[i].FromAngle < out.Bands[j].FromAngle
	})
	if out.Hover.MeanRate == 0 {
		if band, ok := out.band(0); ok {
			out.Hover = Band{MeanRate: band.MeanRate, StdDevRate: band.StdDevRate}
		}
	}
	return out
}

// Validate rejects calibrations that could never have come from a real
// measurement run.
func (p Profile) Validate() error {
	if len(p.Bands) == 0 {
		return fmt.Errorf("energy: profile has no calibration bands")
	}
	for i, band := range p.Bands {
		if band.FromAngle > band.ToAngle {
			return fmt.Errorf("energy: band %d: fromAngle %v exceeds toAngle %v", i, band.FromAngle, band.ToAngle)
		}
		if band.MeanRate < 0 || band.MeanRate >= MaxSaneRate {
			return fmt.Errorf("energy: band %d: mean rate %v outside [0, %v)", i, band.MeanRate, MaxSaneRate)
		}
		if band.MeanSpeed <= 0 {
			return fmt.Errorf("energy: band %d: mean speed %v must be positive", i, band.MeanSpeed)
		}
		if band.StdDevRate < 0 || band.StdDevSpeed < 0 {
			return fmt.Errorf("energy: band %d: negative deviation", i)
		}
	}
	if p.Hover.MeanRate < 0 || p.Hover.MeanRate >= MaxSaneRate {
		return fmt.Errorf("energy: hover mean rate %v outside [0, %v)", p.Hover.MeanRate, MaxSaneRate)
	}
	return nil
}

func (p Profile) band(climbAngle float64) (Band, bool) {
	for _, band := range p.Bands {
		if climbAngle >= band.FromAngle && climbAngle <= band.ToAngle {
			return band, true
		}
	}
	if len(p.Bands) == 0 {
		return Band{}, false
	}
	if climbAngle < p.Bands[0].FromAngle {
		return p.Bands[0], true
	}
	return p.Bands[len(p.Bands)-1], true
}

// Speed returns the achievable speed in m/s at a climb angle. Pessimism
// shifts the estimate below the calibrated mean for conservative duration
// forecasts; the result never drops below a tenth of the mean.
func (p Profile) Speed(climbAngle float64, pessimism int) float64 {
	band, ok := p.band(climbAngle)
	if !ok {
		panic("energy: Speed called on empty profile")
	}
	speed := band.MeanSpeed - float64(pessimism)*band.StdDevSpeed
	if floor := band.MeanSpeed * 0.1; speed < floor {
		speed = floor
	}
	return speed
}

// MovementConsumption returns the expected total draw in mAh for cruising
// or climbing at the given angle for the given duration.
func (p Profile) MovementConsumption(climbAngle, duration float64, method int) float64 {
	if duration <= 0 {
		return 0
	}
	band, ok := p.band(climbAngle)
	if !ok {
		panic("energy: MovementConsumption called on empty profile")
	}
	total := estimate(band, duration, method)
	assertSaneRate(total, duration)
	return total
}

// HoverConsumption returns the expected total draw in mAh for holding
// position for the given duration.
func (p Profile) HoverConsumption(duration float64, method int) float64 {
	if duration <= 0 {
		return 0
	}
	total := estimate(p.Hover, duration, method)
	assertSaneRate(total, duration)
	return total
}

// SampleMovementRate draws one per-second consumption rate for a leg flown
// at the given climb angle. The draw is gaussian around the calibrated mean,
// truncated at zero, and held fixed for the engine's lifetime by the caller.
func (p Profile) SampleMovementRate(rng *rand.Rand, climbAngle float64) float64 {
	band, ok := p.band(climbAngle)
	if !ok {
		panic("energy: SampleMovementRate called on empty profile")
	}
	return sampleRate(rng, band)
}

// SampleHoverRate draws one per-second consumption rate for holding
// position.
func (p Profile) SampleHoverRate(rng *rand.Rand) float64 {
	return sampleRate(rng, p.Hover)
}

func estimate(band Band, duration float64, method int) float64 {
	rate := band.MeanRate
	if method == MethodConfidence {
		rate += band.StdDevRate
	}
	return rate * duration
}

func sampleRate(rng *rand.Rand, band Band) float64 {
	rate := band.MeanRate
	if rng != nil && band.StdDevRate > 0 {
		rate += rng.NormFloat64() * band.StdDevRate
	}
	if rate < 0 {
		rate = 0
	}
	assertSaneRate(rate, 1)
	return rate
}

// assertSaneRate enforces the physical plausibility bound on per-second
// draw. Violations are modeling defects and stop the call path immediately.
func assertSaneRate(total, duration float64) {
	if duration <= 0 {
		return
	}
	rate := total / duration
	if rate < 0 || rate >= MaxSaneRate {
		panic(fmt.Sprintf("energy: consumption rate %v mAh/s outside [0, %v)", rate, MaxSaneRate))
	}
}
