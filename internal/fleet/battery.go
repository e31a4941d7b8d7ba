package fleet

// Battery tracks a node's stored energy in mAh. Engines drain it through
// Discharge during their per-tick updates; stations refill it with Charge.
type Battery struct {
	capacity  float64
	remaining float64
}

// NewBattery returns a full battery with the given capacity in mAh.
func NewBattery(capacity float64) *Battery {
	if capacity <= 0 {
		capacity = DefaultBatteryCapacity
	}
	return &Battery{capacity: capacity, remaining: capacity}
}

// Discharge removes energy, clamping at empty.
func (b *Battery) Discharge(amount float64) {
	if b == nil || amount <= 0 {
		return
	}
	b.remaining -= amount
	if b.remaining < 0 {
		b.remaining = 0
	}
}

// Charge restores energy, clamping at capacity.
func (b *Battery) Charge(amount float64) {
	if b == nil || amount <= 0 {
		return
	}
	b.remaining += amount
	if b.remaining > b.capacity {
		b.remaining = b.capacity
	}
}

func (b *Battery) IsFull() bool {
	return b != nil && b.remaining >= b.capacity
}

func (b *Battery) IsEmpty() bool {
	return b == nil || b.remaining <= 0
}

// Remaining returns the stored energy in mAh.
func (b *Battery) Remaining() float64 {
	if b == nil {
		return 0
	}
	return b.remaining
}

// RemainingPercentage returns the state of charge in [0, 100].
func (b *Battery) RemainingPercentage() float64 {
	if b == nil || b.capacity <= 0 {
		return 0
	}
	return b.remaining / b.capacity * 100
}

// Capacity returns the battery's full charge in mAh.
func (b *Battery) Capacity() float64 {
	if b == nil {
		return 0
	}
	return b.capacity
}
