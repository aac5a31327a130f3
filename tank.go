package ramjet

import "fmt"

// Tank holds either reaction mass (kg) or electrical energy (J).
// Its level is always within [0, capacity].
type Tank struct {
	name     string
	capacity float64
	fuel     float64
}

// NewTank returns a new full tank.
func NewTank(name string, capacity float64) *Tank {
	if !(capacity >= 0) {
		panic(fmt.Errorf("tank %s: negative capacity %f", name, capacity))
	}
	return &Tank{name, capacity, capacity}
}

// Name returns the name of this tank.
func (t *Tank) Name() string {
	return t.name
}

// Capacity returns the maximum amount this tank can store.
func (t *Tank) Capacity() float64 {
	return t.capacity
}

// Level returns the amount currently stored.
func (t *Tank) Level() float64 {
	return t.fuel
}

// IsEmpty returns whether nothing is left in the tank.
func (t *Tank) IsEmpty() bool {
	return t.fuel == 0
}

// PipeIn adds the provided amount to the tank and returns what could not be
// stored. The caller may re-route the overflow, else it is jettisoned.
func (t *Tank) PipeIn(amount float64) (overflow float64) {
	if !(amount >= 0) {
		panic(fmt.Errorf("tank %s: cannot pipe in negative amount %f", t.name, amount))
	}
	t.fuel += amount
	if t.fuel > t.capacity {
		overflow = t.fuel - t.capacity
		t.fuel = t.capacity
	}
	return
}

// PipeOut removes the requested amount from the tank. If not enough is
// stored, the tank is drained and the throttle is the fraction of the
// request which was delivered; otherwise the throttle is 1.
func (t *Tank) PipeOut(amount float64) (delivered, throttle float64) {
	if !(amount >= 0) {
		panic(fmt.Errorf("tank %s: cannot pipe out negative amount %f", t.name, amount))
	}
	if amount <= t.fuel {
		t.fuel -= amount
		return amount, 1
	}
	delivered = t.fuel
	t.fuel = 0
	return delivered, delivered / amount
}

// Preview implements the Previewer interface.
func (t *Tank) Preview() Preview {
	return Preview{"fuel": t.fuel, "capacity": t.capacity}
}

func (t *Tank) String() string {
	return fmt.Sprintf("%s: %g/%g", t.name, t.fuel, t.capacity)
}
