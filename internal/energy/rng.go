package energy

import (
	"hash/fnv"
	"math/rand"
)

// DefaultSeed is used when a scenario does not pin one.
const DefaultSeed = "fleet-default"

// DeterministicSeedValue folds a root seed and a subsystem label into a
// stable int64 so every consumer gets an independent, replayable stream.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministicRNG returns a rand.Rand seeded from the root seed and a
// subsystem label, e.g. NewDeterministicRNG(seed, "node.uav-3").
func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}
