package game

// Gauge is a clamped resource bar (health, fire charge).
// Invariant: 0 <= value <= max. IsFull/IsEmpty are refreshed on every mutation.
type Gauge struct {
	value float64
	max   float64

	isFull  bool
	isEmpty bool

	// Presentation state; the bar follows its tank with a fixed offset.
	Pos     Vec
	Offset  Vec
	Visible bool
}

// NewGauge creates a gauge holding value out of capacity.
func NewGauge(value, capacity float64) *Gauge {
	g := &Gauge{max: capacity, Visible: true}
	g.value = clamp(value, 0, capacity)
	g.refresh()
	return g
}

func (g *Gauge) refresh() {
	g.isFull = g.value >= g.max
	g.isEmpty = g.value <= 0
}

func (g *Gauge) Value() float64 { return g.value }
func (g *Gauge) Max() float64 { return g.max }
func (g *Gauge) IsFull() bool { return g.isFull }
func (g *Gauge) IsEmpty() bool { return g.isEmpty }

// Percent returns value/max in [0,1]. A zero-capacity gauge reads as empty.
func (g *Gauge) Percent() float64 {
	if g.max <= 0 {
		return 0
	}
	return g.value / g.max
}

// Increase adds amount, clamped to max.
func (g *Gauge) Increase(amount float64) {
	g.value += amount
	if g.value > g.max {
		g.value = g.max
	}
	g.refresh()
}

// Decrease removes amount, clamped to zero. Clipped excess is not remembered.
func (g *Gauge) Decrease(amount float64) {
	g.value -= amount
	if g.value < 0 {
		g.value = 0
	}
	g.refresh()
}

func (g *Gauge) SetZero() {
	g.value = 0
	g.refresh()
}

func (g *Gauge) SetFull() {
	g.value = g.max
	g.refresh()
}

// SetMax changes the capacity and clamps the current value into it.
func (g *Gauge) SetMax(capacity float64) {
	if capacity < 0 {
		capacity = 0
	}
	g.max = capacity
	if g.value > capacity {
		g.value = capacity
	}
	g.refresh()
}

// HasAmount reports whether at least amount is available.
func (g *Gauge) HasAmount(amount float64) bool {
	return g.value >= amount
}

// Follow moves the bar to its owner position plus the configured offset.
func (g *Gauge) Follow(owner Vec) {
	g.Pos = owner.Add(g.Offset)
}
