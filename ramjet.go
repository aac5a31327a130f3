package ramjet

import (
	"errors"
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Ramjet is an ion ramjet: a thruster fed by the hydrogen its scoop collects,
// both powered by an onboard generator through a battery.
type Ramjet struct {
	Name      string
	Spacetime *Spacetime
	Tank      *Tank // reaction mass, in kg
	Battery   *Tank // electrical energy, in J
	Thruster  *Thruster
	Scoop     *Scoop
	Generator *Generator
	coreMass  float64
	mass      float64
	logger    kitlog.Logger
}

// Option configures a Ramjet at construction.
type Option func(*rjOptions)

type rjOptions struct {
	position, velocity Vector2
	relativistic       bool
	logger             kitlog.Logger
}

// WithPosition sets the initial position of the craft.
func WithPosition(r Vector2) Option {
	return func(o *rjOptions) { o.position = r }
}

// WithVelocity sets the initial velocity of the craft.
func WithVelocity(v Vector2) Option {
	return func(o *rjOptions) { o.velocity = v }
}

// WithRelativity enables time dilation of the onboard clock.
func WithRelativity() Option {
	return func(o *rjOptions) { o.relativistic = true }
}

// WithLogger sets the logger of the craft.
func WithLogger(logger kitlog.Logger) Option {
	return func(o *rjOptions) { o.logger = logger }
}

// DefaultPosition is where crafts start: off the origin so that the
// direction of the incoming stream is defined.
var DefaultPosition = Vector2{1, 0}

// NewRamjet builds a craft from its blueprint.
func NewRamjet(bp Blueprint, consts Constants, opts ...Option) (*Ramjet, error) {
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	o := rjOptions{position: DefaultPosition}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}

	var st *Spacetime
	if o.relativistic {
		st = NewRelativisticSpacetime(o.position, o.velocity, consts.SpeedOfLight)
	} else {
		st = NewSpacetime(o.position, o.velocity)
	}
	r := &Ramjet{
		Name:      bp.Name,
		Spacetime: st,
		Tank:      NewTank("tank", bp.FuelCapacity),
		Battery:   NewTank("battery", bp.BatteryCapacity),
		Thruster:  NewThruster(bp.Thrust, bp.ExhaustVelocity, bp.EnginePower),
		Scoop:     NewScoop(bp.ScoopPower, bp.ScoopRadius, bp.ScoopEfficiency, consts.HydrogenDensity),
		Generator: NewGenerator(bp.GeneratorPower),
		coreMass:  bp.CoreMass,
		logger:    kitlog.With(o.logger, "craft", bp.Name),
	}
	r.updateMass()
	return r, nil
}

// CoreMass returns the dry mass of the craft in kg.
func (r *Ramjet) CoreMass() float64 {
	return r.coreMass
}

// Mass returns the total mass of the craft in kg. Stored energy has no mass.
func (r *Ramjet) Mass() float64 {
	return r.mass
}

func (r *Ramjet) updateMass() {
	r.mass = r.coreMass + r.Tank.Level()
}

func (r *Ramjet) environment() Environment {
	return Environment{
		Tank:     r.Tank,
		Battery:  r.Battery,
		Position: r.Spacetime.Position(),
		Velocity: r.Spacetime.Velocity(),
	}
}

// Tick performs one simulation step of dt seconds. The order matters: the
// scoop draws on the freshly charged battery, the thruster on what the
// scoop left and collected, and the thrust accelerates the current mass.
func (r *Ramjet) Tick(dt float64) {
	env := r.environment()
	r.Generator.Generate(env, dt)
	r.Scoop.Collect(env, dt)
	thrust := r.Thruster.Fire(env, dt)
	r.updateMass()
	r.Spacetime.ApplyForce(r.mass, thrust)
	r.Spacetime.Advance(dt)
}

// Parts returns the parts of the craft, in the order in which they are stepped.
func (r *Ramjet) Parts() []Steppable {
	return []Steppable{r.Generator, r.Scoop, r.Thruster}
}

// Previews returns the diagnostic snapshot of every component, keyed by name.
func (r *Ramjet) Previews() map[string]Preview {
	previews := make(map[string]Preview)
	previews["craft"] = Preview{"mass": r.mass, "core_mass": r.coreMass}
	previews["spacetime"] = r.Spacetime.Preview()
	for _, tank := range []*Tank{r.Tank, r.Battery} {
		previews[tank.Name()] = tank.Preview()
	}
	for _, part := range r.Parts() {
		previews[part.Name()] = part.Preview()
	}
	return previews
}

// LogStatus logs the state of the craft.
func (r *Ramjet) LogStatus() {
	r.logger.Log("level", "info", "subsys", "craft", "t(s)", r.Spacetime.Time(), "r(m)", r.Spacetime.Position(), "v(m/s)", r.Spacetime.Velocity(), "fuel(kg)", r.Tank.Level(), "battery(J)", r.Battery.Level())
}

func (r *Ramjet) String() string {
	return fmt.Sprintf("%s (%.3f kg)\n%s\n%s\n%s\n%s\n%s\n%s", r.Name, r.mass, r.Spacetime, r.Tank, r.Battery, r.Thruster, r.Scoop, r.Generator)
}

// ErrInvalidBlueprint is returned when a blueprint cannot be built.
var ErrInvalidBlueprint = errors.New("invalid blueprint")
