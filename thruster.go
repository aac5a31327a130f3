package ramjet

import (
	"fmt"
	"math"
)

// Thruster is an ion engine: it ejects reaction mass at a fixed exhaust
// velocity and draws power while doing so.
type Thruster struct {
	thrust    float64 // N
	vE        float64 // m/s
	powerDraw float64 // W
	preview   Preview
}

// NewThruster returns a new thruster. The exhaust velocity must be positive.
func NewThruster(thrust, exhaustVelocity, powerDraw float64) *Thruster {
	if !(exhaustVelocity > 0) {
		panic(fmt.Errorf("thruster exhaust velocity must be positive, got %f", exhaustVelocity))
	}
	return &Thruster{thrust, exhaustVelocity, powerDraw, Preview{}}
}

// Name implements the Steppable interface.
func (t *Thruster) Name() string {
	return "thruster"
}

// Thrust returns the thrust rating in Newtons.
func (t *Thruster) Thrust() float64 {
	return t.thrust
}

// ExhaustVelocity returns the exhaust velocity in m/s.
func (t *Thruster) ExhaustVelocity() float64 {
	return t.vE
}

// PowerDraw returns the power drawn at full throttle in W.
func (t *Thruster) PowerDraw() float64 {
	return t.powerDraw
}

// MassFlowRate returns the reaction mass consumed at full throttle in kg/s.
func (t *Thruster) MassFlowRate() float64 {
	return t.thrust / t.vE
}

// Fire draws fuel and power for a step of dt seconds and returns the thrust
// vector. Both streams are delivered at the same throttle: whichever one
// is short sets it, and the excess of the other is refunded to its tank.
// The thrust points along the polar direction of the craft position.
// TODO: this only matches the heading while the craft moves radially; steer along the velocity.
func (t *Thruster) Fire(env Environment, dt float64) Vector2 {
	if env.Tank.IsEmpty() {
		t.preview = Preview{"thrust": 0, "thrust_x": 0, "thrust_y": 0, "fuel": 0, "fuel_throttle": 0, "power": 0, "power_throttle": 0, "throttle": 0}
		return Vector2{}
	}
	fuel, fuelThrottle := env.Tank.PipeOut(t.MassFlowRate() * dt)
	power, powerThrottle := env.Battery.PipeOut(t.powerDraw * dt)

	throttle := math.Min(fuelThrottle, powerThrottle)
	fuel = reconcile(env.Tank, fuel, fuelThrottle, throttle)
	power = reconcile(env.Battery, power, powerThrottle, throttle)

	thrust := FromPolar(fuel*t.vE, env.Position.Angle())
	t.preview = Preview{
		"thrust":         thrust.Norm(),
		"thrust_x":       thrust.X,
		"thrust_y":       thrust.Y,
		"fuel":           fuel,
		"fuel_throttle":  fuelThrottle,
		"power":          power,
		"power_throttle": powerThrottle,
		"throttle":       throttle,
	}
	return thrust
}

// reconcile scales down what was delivered at throttle own to match the
// binding throttle, refunds the difference into the tank, and returns the
// effective amount.
func reconcile(tank *Tank, delivered, own, binding float64) float64 {
	if own == binding || own == 0 {
		return delivered
	}
	effective := delivered * (binding / own)
	tank.PipeIn(delivered - effective)
	return effective
}

// Step implements the Steppable interface.
func (t *Thruster) Step(env Environment, dt float64) Preview {
	t.Fire(env, dt)
	return t.preview
}

// Preview implements the Previewer interface.
func (t *Thruster) Preview() Preview {
	return t.preview
}

func (t *Thruster) String() string {
	return fmt.Sprintf("thruster %g N @ %g m/s (%g W)", t.thrust, t.vE, t.powerDraw)
}
