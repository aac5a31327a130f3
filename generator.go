package ramjet

import "fmt"

// Generator charges the battery at a constant rate (e.g. RTGs).
type Generator struct {
	rate    float64 // W
	preview Preview
}

// NewGenerator returns a new generator producing the provided power.
func NewGenerator(rate float64) *Generator {
	if !(rate >= 0) {
		panic(fmt.Errorf("generator power must be non-negative, got %f", rate))
	}
	return &Generator{rate, Preview{}}
}

// Name implements the Steppable interface.
func (g *Generator) Name() string {
	return "generator"
}

// Rate returns the power produced in W.
func (g *Generator) Rate() float64 {
	return g.rate
}

// Generate pipes dt seconds worth of power into the battery and returns the
// energy produced, whether or not the battery could store all of it.
func (g *Generator) Generate(env Environment, dt float64) float64 {
	power := g.rate * dt
	jettisoned := env.Battery.PipeIn(power)
	g.preview = Preview{"power": power, "jettisoned": jettisoned}
	return power
}

// Step implements the Steppable interface.
func (g *Generator) Step(env Environment, dt float64) Preview {
	g.Generate(env, dt)
	return g.preview
}

// Preview implements the Previewer interface.
func (g *Generator) Preview() Preview {
	return g.preview
}

func (g *Generator) String() string {
	return fmt.Sprintf("generator %g W", g.rate)
}
