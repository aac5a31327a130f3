package ramjet

import (
	"fmt"
	"sort"
	"strings"
)

// Preview is a diagnostic snapshot of a component, keyed by quantity.
type Preview map[string]float64

func (p Preview) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

// Previewer defines anything which reports a Preview.
type Previewer interface {
	Preview() Preview
}

// Environment is what a part may act upon during one step. The tanks are
// the owning craft's: parts never keep them past the call.
type Environment struct {
	Tank     *Tank   // reaction mass
	Battery  *Tank   // electrical energy
	Position Vector2 // position of the craft at the start of the step
	Velocity Vector2 // velocity of the craft at the start of the step
}

// Steppable defines a part which transforms resources once per step.
type Steppable interface {
	Previewer
	// Name of the part, used as its key in the craft previews.
	Name() string
	// Step performs this part's work for a step of dt seconds and returns the preview.
	Step(env Environment, dt float64) Preview
}
