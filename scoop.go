package ramjet

import (
	"fmt"
	"math"
)

// Scoop collects interstellar hydrogen with a magnetic field whose radius
// scales with the power it receives.
type Scoop struct {
	powerDraw  float64 // W
	maxRadius  float64 // m
	efficiency float64 // fraction of the swept mass which is kept
	density    float64 // kg/m^3 of the medium
	preview    Preview
}

// NewScoop returns a new scoop sweeping a medium of the provided density.
func NewScoop(powerDraw, maxRadius, efficiency, density float64) *Scoop {
	if !(efficiency >= 0 && efficiency <= 1) {
		panic(fmt.Errorf("scoop efficiency must be within [0, 1], got %f", efficiency))
	}
	return &Scoop{powerDraw, maxRadius, efficiency, density, Preview{}}
}

// Name implements the Steppable interface.
func (s *Scoop) Name() string {
	return "scoop"
}

// PowerDraw returns the power drawn at full radius in W.
func (s *Scoop) PowerDraw() float64 {
	return s.powerDraw
}

// MaxRadius returns the radius of the scoop at full power in m.
func (s *Scoop) MaxRadius() float64 {
	return s.maxRadius
}

// Alignment returns how well the motion of the craft faces the incoming
// stream, which flows radially from the origin: the cosine between the
// position and the velocity, floored at zero.
func Alignment(position, velocity Vector2) float64 {
	alignment := position.Unit().Dot(velocity.Unit())
	if math.IsNaN(alignment) || alignment < 0 {
		return 0
	}
	return alignment
}

// Collect scoops the medium for a step of dt seconds, pipes the collected
// mass into the tank and returns it. Whatever the tank cannot hold is lost.
func (s *Scoop) Collect(env Environment, dt float64) float64 {
	alignment := Alignment(env.Position, env.Velocity)
	power, throttle := env.Battery.PipeOut(s.powerDraw * dt)

	radius := s.maxRadius * throttle
	area := math.Pi * radius * radius
	volume := area * alignment * env.Velocity.Norm() * dt
	collected := s.efficiency * volume * s.density
	jettisoned := env.Tank.PipeIn(collected)

	s.preview = Preview{
		"alignment":  alignment,
		"power":      power,
		"throttle":   throttle,
		"area":       area,
		"volume":     volume,
		"collected":  collected,
		"jettisoned": jettisoned,
	}
	return collected
}

// Step implements the Steppable interface.
func (s *Scoop) Step(env Environment, dt float64) Preview {
	s.Collect(env, dt)
	return s.preview
}

// Preview implements the Previewer interface.
func (s *Scoop) Preview() Preview {
	return s.preview
}

func (s *Scoop) String() string {
	return fmt.Sprintf("scoop r=%g m (%g W, η=%g)", s.maxRadius, s.powerDraw, s.efficiency)
}
