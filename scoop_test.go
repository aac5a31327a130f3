package ramjet

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestAlignment(t *testing.T) {
	for _, tc := range []struct {
		position, velocity Vector2
		expected           float64
	}{
		{Vector2{1, 0}, Vector2{10, 0}, 1},
		{Vector2{1, 0}, Vector2{-10, 0}, 0},
		{Vector2{1, 0}, Vector2{0, 10}, 0},
		{Vector2{1, 0}, Vector2{1, 1}, math.Sqrt2 / 2},
		{Vector2{0, 3}, Vector2{-1, -1}, 0},
		{Vector2{}, Vector2{1, 0}, 0},
		{Vector2{1, 0}, Vector2{}, 0},
		{Vector2{}, Vector2{}, 0},
	} {
		got := Alignment(tc.position, tc.velocity)
		if math.IsNaN(got) || !floats.EqualWithinAbs(got, tc.expected, 1e-12) {
			t.Errorf("alignment of %s and %s: got %f expected %f", tc.position, tc.velocity, got, tc.expected)
		}
	}
	if got := Alignment(Vector2{math.NaN(), 0}, Vector2{1, 0}); got != 0 {
		t.Errorf("NaN alignment should be 0, got %f", got)
	}
}

func TestScoopCollect(t *testing.T) {
	scoop := NewScoop(100, 2, 0.5, 3)
	env := Environment{Tank: emptyTank("tank", 1000), Battery: NewTank("battery", 1000), Position: Vector2{1, 0}, Velocity: Vector2{10, 0}}
	collected := scoop.Collect(env, 2)
	// 0.5 * π(2 m)² * 10 m/s * 2 s * 3 kg/m³
	if !floats.EqualWithinAbs(collected, 120*math.Pi, 1e-9) {
		t.Fatalf("invalid collection %f", collected)
	}
	if !floats.EqualWithinAbs(env.Tank.Level(), 120*math.Pi, 1e-9) {
		t.Fatalf("collection not piped into the tank: %s", env.Tank)
	}
	if env.Battery.Level() != 800 {
		t.Fatalf("invalid power draw: %s", env.Battery)
	}
	if p := scoop.Preview(); p["throttle"] != 1 || p["alignment"] != 1 || p["jettisoned"] != 0 {
		t.Fatalf("invalid preview %s", p)
	}
}

func TestScoopThrottled(t *testing.T) {
	scoop := NewScoop(100, 2, 0.5, 3)
	env := Environment{Tank: emptyTank("tank", 1000), Battery: NewTank("battery", 100), Position: Vector2{1, 0}, Velocity: Vector2{10, 0}}
	collected := scoop.Collect(env, 2)
	// Half the power, half the radius and a quarter of the area.
	if !floats.EqualWithinAbs(collected, 30*math.Pi, 1e-9) {
		t.Fatalf("invalid collection %f", collected)
	}
	if p := scoop.Preview(); p["throttle"] != 0.5 || !floats.EqualWithinAbs(p["area"], math.Pi, 1e-12) {
		t.Fatalf("invalid preview %s", p)
	}
	if !env.Battery.IsEmpty() {
		t.Fatalf("battery should be drained: %s", env.Battery)
	}
}

func TestScoopAntiParallel(t *testing.T) {
	scoop := NewScoop(100, 2, 1, 3)
	env := Environment{Tank: emptyTank("tank", 1000), Battery: NewTank("battery", 1000), Position: Vector2{1, 0}, Velocity: Vector2{-10, 0}}
	if collected := scoop.Collect(env, 1); collected != 0 {
		t.Fatalf("moving against the stream collected %f", collected)
	}
	if !env.Tank.IsEmpty() {
		t.Fatalf("tank should be empty: %s", env.Tank)
	}
	if env.Battery.Level() != 900 {
		t.Fatalf("scoop should draw power regardless: %s", env.Battery)
	}
}

func TestScoopOverflow(t *testing.T) {
	scoop := NewScoop(100, 2, 0.5, 3)
	var part Steppable = scoop
	env := Environment{Tank: emptyTank("tank", 100), Battery: NewTank("battery", 1000), Position: Vector2{1, 0}, Velocity: Vector2{10, 0}}
	p := part.Step(env, 2)
	if env.Tank.Level() != 100 {
		t.Fatalf("tank should be full: %s", env.Tank)
	}
	if !floats.EqualWithinAbs(p["jettisoned"], 120*math.Pi-100, 1e-9) {
		t.Fatalf("invalid jettisoned mass %f", p["jettisoned"])
	}
}

func TestScoopEfficiency(t *testing.T) {
	scoop := NewScoop(100, 2, 0, 3)
	env := Environment{Tank: emptyTank("tank", 1000), Battery: NewTank("battery", 1000), Position: Vector2{1, 0}, Velocity: Vector2{10, 0}}
	if collected := scoop.Collect(env, 2); collected != 0 || !env.Tank.IsEmpty() {
		t.Fatalf("scoop without efficiency collected %f (%s)", collected, env.Tank)
	}
	assertPanic(t, func() {
		NewScoop(1, 1, math.NaN(), 1)
	})
	assertPanic(t, func() {
		NewScoop(1, 1, 1.1, 1)
	})
	assertPanic(t, func() {
		NewScoop(1, 1, -0.1, 1)
	})
}
