package ramjet

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	// zeroε is the norm under which a vector is considered to be the zero vector.
	zeroε = 1e-12
)

// Vector2 is a vector in the plane of motion. All operations return new values.
type Vector2 struct {
	X, Y float64
}

// FromPolar returns the vector of norm r at angle θ (radians) from the X axis.
func FromPolar(r, θ float64) Vector2 {
	sθ, cθ := math.Sincos(θ)
	return Vector2{r * cθ, r * sθ}
}

// Add returns v+w.
func (v Vector2) Add(w Vector2) Vector2 {
	return Vector2{v.X + w.X, v.Y + w.Y}
}

// Sub returns v-w.
func (v Vector2) Sub(w Vector2) Vector2 {
	return Vector2{v.X - w.X, v.Y - w.Y}
}

// Scale returns v*k.
func (v Vector2) Scale(k float64) Vector2 {
	return Vector2{v.X * k, v.Y * k}
}

// Div returns v/k.
func (v Vector2) Div(k float64) Vector2 {
	return Vector2{v.X / k, v.Y / k}
}

// Dot performs the inner product via mat64/BLAS.
func (v Vector2) Dot(w Vector2) float64 {
	return mat64.Dot(mat64.NewVector(2, []float64{v.X, v.Y}), mat64.NewVector(2, []float64{w.X, w.Y}))
}

// Norm returns the magnitude of the vector.
func (v Vector2) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Angle returns the polar angle of the vector in radians, in (-π, π].
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Polar returns the norm and the polar angle of the vector.
func (v Vector2) Polar() (r, θ float64) {
	return v.Norm(), v.Angle()
}

// IsZero returns whether this is the zero vector.
func (v Vector2) IsZero() bool {
	return floats.EqualWithinAbs(v.Norm(), 0, zeroε)
}

// Unit returns the unit vector. The unit of the zero vector is undefined, so
// the zero vector is returned instead and callers must check for it.
func (v Vector2) Unit() Vector2 {
	n := v.Norm()
	if floats.EqualWithinAbs(n, 0, zeroε) {
		return Vector2{}
	}
	return v.Div(n)
}

// Equals returns whether both vectors are equal within the provided absolute tolerance.
func (v Vector2) Equals(w Vector2, tol float64) bool {
	return floats.EqualWithinAbs(v.X, w.X, tol) && floats.EqualWithinAbs(v.Y, w.Y, tol)
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
