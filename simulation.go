package ramjet

import (
	"fmt"
	"os"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
)

// EndReason tells why a simulation stopped.
type EndReason uint8

const (
	running EndReason = iota
	// FuelExhausted means the tank of the craft is empty.
	FuelExhausted
	// TimeLimit means the simulated time went past the maximum.
	TimeLimit
	// StepLimit means the maximum number of steps was performed.
	StepLimit
)

func (r EndReason) String() string {
	switch r {
	case running:
		return "running"
	case FuelExhausted:
		return "fuel exhausted"
	case TimeLimit:
		return "time limit"
	case StepLimit:
		return "step limit"
	}
	panic("cannot stringify unknown end reason")
}

// SimConfig configures a Simulation.
type SimConfig struct {
	Step       float64       // simulated seconds per step
	MaxTime    float64       // simulated seconds after which to stop, defaults to a century
	MaxSteps   uint64        // number of steps after which to stop, 0 for no limit
	PrintEvery time.Duration // wall clock duration between status lines, 0 to disable
	Lockstep   bool          // perform one step per status line (debugging)
	Epoch      time.Time     // calendar date of the start of the simulation
	Constants  Constants     // zero value means DefaultConstants
	Recorder   Recorder      // optional
	Metrics    *Metrics      // optional
	Logger     kitlog.Logger // optional
}

// Summary is the outcome of a simulation.
type Summary struct {
	Steps      uint64
	Time       float64 // simulated seconds
	ProperTime float64 // onboard seconds
	Reason     EndReason
	Δv         float64 // m/s
	FuelUsed   float64 // kg, net of what was scooped
	Distance   float64 // m from the start
}

func (s Summary) String() string {
	return fmt.Sprintf("%s after %d steps (%.3f days, %.3f days aboard): Δv=%.3f m/s fuel=%.6f kg distance=%.3f m", s.Reason, s.Steps, s.Time/Day, s.ProperTime/Day, s.Δv, s.FuelUsed, s.Distance)
}

// Simulation steps a Ramjet until an end condition is met.
type Simulation struct {
	Craft    *Ramjet
	conf     SimConfig
	step     uint64
	time     float64 // simulated (coordinate) time
	jdEpoch  float64
	logger   kitlog.Logger
	recorder Recorder
}

// NewSimulation returns a new simulation of the provided craft.
func NewSimulation(craft *Ramjet, conf SimConfig) (*Simulation, error) {
	if !(conf.Step > 0) {
		return nil, fmt.Errorf("simulation step must be positive, got %f", conf.Step)
	}
	if conf.Constants == (Constants{}) {
		conf.Constants = DefaultConstants()
	}
	if conf.MaxTime <= 0 {
		conf.MaxTime = 100 * conf.Constants.Year
	}
	if conf.Epoch.IsZero() {
		conf.Epoch = time.Now()
	}
	// All dates are in UTC.
	conf.Epoch = conf.Epoch.UTC()
	if conf.Logger == nil {
		conf.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	return &Simulation{
		Craft:    craft,
		conf:     conf,
		jdEpoch:  julian.TimeToJD(conf.Epoch),
		logger:   kitlog.With(conf.Logger, "craft", craft.Name),
		recorder: conf.Recorder,
	}, nil
}

// Step returns the number of steps performed so far.
func (s *Simulation) Step() uint64 {
	return s.step
}

// Time returns the simulated time so far in seconds.
func (s *Simulation) Time() float64 {
	return s.time
}

// Snapshot returns the current state of the craft.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Step:       s.step,
		Time:       s.time,
		ProperTime: s.Craft.Spacetime.Time(),
		JD:         s.jdEpoch + s.time/Day,
		Previews:   s.Craft.Previews(),
	}
}

// LogStatus logs the status of the simulation and of the craft.
func (s *Simulation) LogStatus() {
	s.logger.Log("level", "info", "subsys", "sim", "step", s.step, "days", s.time/Day, "mass(kg)", s.Craft.Mass(), "r(m)", s.Craft.Spacetime.Position().Norm(), "v(m/s)", s.Craft.Spacetime.Velocity().Norm(), "fuel(kg)", s.Craft.Tank.Level(), "battery(J)", s.Craft.Battery.Level())
}

// endReason checks the end conditions, after the physics update of a step.
func (s *Simulation) endReason() EndReason {
	switch {
	case s.Craft.Tank.IsEmpty():
		return FuelExhausted
	case s.time > s.conf.MaxTime:
		return TimeLimit
	case s.conf.MaxSteps > 0 && s.step >= s.conf.MaxSteps:
		return StepLimit
	}
	return running
}

func (s *Simulation) record() error {
	if s.recorder == nil {
		return nil
	}
	return s.recorder.Record(s.Snapshot())
}

// Run steps the craft until an end condition is met, then closes the recorder.
// The initial state is recorded as step zero.
func (s *Simulation) Run() (sum Summary, err error) {
	defer func() {
		if s.recorder == nil {
			return
		}
		if cerr := s.recorder.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing recorder: %w", cerr)
		}
	}()

	v0 := s.Craft.Spacetime.Velocity()
	r0 := s.Craft.Spacetime.Position()
	fuel0 := s.Craft.Tank.Level()
	s.logger.Log("level", "notice", "subsys", "sim", "status", "started", "step(s)", s.conf.Step, "epoch", s.conf.Epoch)
	s.LogStatus()
	if err = s.record(); err != nil {
		return sum, err
	}

	var ticker *time.Ticker
	if s.conf.PrintEvery > 0 {
		ticker = time.NewTicker(s.conf.PrintEvery)
		defer ticker.Stop()
	}
	reason := running
	for reason == running {
		if s.conf.Lockstep && ticker != nil {
			<-ticker.C
			s.LogStatus()
		}
		start := time.Now()
		s.Craft.Tick(s.conf.Step)
		s.step++
		s.time += s.conf.Step
		s.conf.Metrics.Observe(s.Craft, time.Since(start))
		if err = s.record(); err != nil {
			s.logger.Log("level", "critical", "subsys", "sim", "step", s.step, "err", err)
			return sum, err
		}
		if !s.conf.Lockstep && ticker != nil {
			select {
			case <-ticker.C:
				s.LogStatus()
			default:
			}
		}
		reason = s.endReason()
	}

	sum = Summary{
		Steps:      s.step,
		Time:       s.time,
		ProperTime: s.Craft.Spacetime.Time(),
		Reason:     reason,
		Δv:         s.Craft.Spacetime.Velocity().Sub(v0).Norm(),
		FuelUsed:   fuel0 - s.Craft.Tank.Level(),
		Distance:   s.Craft.Spacetime.Position().Sub(r0).Norm(),
	}
	level := "notice"
	if reason == TimeLimit {
		level = "critical"
	}
	s.logger.Log("level", level, "subsys", "sim", "status", "finished", "reason", reason, "steps", sum.Steps, "days", sum.Time/Day, "Δv(m/s)", sum.Δv, "fuel(kg)", sum.FuelUsed)
	s.LogStatus()
	return sum, nil
}
