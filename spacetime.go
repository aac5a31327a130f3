package ramjet

import (
	"fmt"
	"math"
)

// Spacetime tracks the motion and the proper time of one body.
// Forces are accumulated with ApplyForce and integrated with Advance, once per step.
type Spacetime struct {
	position, velocity Vector2
	acceleration       Vector2 // accumulator, zero outside of a step
	lastAcceleration   Vector2 // acceleration integrated during the last step
	time               float64 // elapsed proper time in seconds
	c                  float64 // speed of light, or 0 for Newtonian time
}

// NewSpacetime returns a Newtonian spacetime: proper time is coordinate time.
func NewSpacetime(position, velocity Vector2) *Spacetime {
	return &Spacetime{position: position, velocity: velocity}
}

// NewRelativisticSpacetime returns a spacetime whose clock is time dilated
// for an observer aboard the body.
func NewRelativisticSpacetime(position, velocity Vector2, c float64) *Spacetime {
	if !(c > 0) {
		panic(fmt.Errorf("speed of light must be positive, got %f", c))
	}
	return &Spacetime{position: position, velocity: velocity, c: c}
}

// Position returns the current position in m.
func (s *Spacetime) Position() Vector2 {
	return s.position
}

// Velocity returns the current velocity in m/s.
func (s *Spacetime) Velocity() Vector2 {
	return s.velocity
}

// Acceleration returns the acceleration integrated during the last step in m/s^2.
func (s *Spacetime) Acceleration() Vector2 {
	return s.lastAcceleration
}

// Time returns the elapsed proper time in s.
func (s *Spacetime) Time() float64 {
	return s.time
}

// IsRelativistic returns whether time dilation is accounted for.
func (s *Spacetime) IsRelativistic() bool {
	return s.c > 0
}

// Gamma returns the Lorentz factor at the current velocity; it is 1 for a
// Newtonian spacetime and +Inf at or above the speed of light.
func (s *Spacetime) Gamma() float64 {
	if s.c <= 0 {
		return 1
	}
	β := s.velocity.Norm() / s.c
	if β >= 1 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(1-β*β)
}

// ApplyForce accumulates the acceleration caused by the provided force on a body of the provided mass.
func (s *Spacetime) ApplyForce(mass float64, force Vector2) {
	if !(mass > 0) {
		panic(fmt.Errorf("cannot apply force %s on non-positive mass %f", force, mass))
	}
	s.acceleration = s.acceleration.Add(force.Div(mass))
}

// Advance integrates the motion over dt seconds with a semi-implicit Euler:
// the velocity is updated first and the new velocity moves the body.
func (s *Spacetime) Advance(dt float64) {
	s.velocity = s.velocity.Add(s.acceleration.Scale(dt))
	s.position = s.position.Add(s.velocity.Scale(dt))
	s.time += dt / s.Gamma()

	s.lastAcceleration = s.acceleration
	s.acceleration = Vector2{}
}

// Preview implements the Previewer interface.
func (s *Spacetime) Preview() Preview {
	return Preview{
		"pos_x": s.position.X,
		"pos_y": s.position.Y,
		"vel_x": s.velocity.X,
		"vel_y": s.velocity.Y,
		"acc_x": s.lastAcceleration.X,
		"acc_y": s.lastAcceleration.Y,
		"speed": s.velocity.Norm(),
		"time":  s.time,
		"gamma": s.Gamma(),
	}
}

func (s *Spacetime) String() string {
	return fmt.Sprintf("r=%s m\tv=%s m/s\ta=%s m/s^2\tt=%g s", s.position, s.velocity, s.lastAcceleration, s.time)
}
