package ramjet

import (
	"errors"
	"math"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func quietSim(t *testing.T, r *Ramjet, conf SimConfig) *Simulation {
	conf.Logger = kitlog.NewNopLogger()
	sim, err := NewSimulation(r, conf)
	if err != nil {
		t.Fatalf("could not create simulation: %s", err)
	}
	return sim
}

func TestSimulationStepLimit(t *testing.T) {
	rec := NewMemoryStore(Metadata{Craft: IoRamBeta})
	sim := quietSim(t, quietRamjet(t, IoRamBeta), SimConfig{Step: 1, MaxSteps: 10, Recorder: rec})
	sum, err := sim.Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != StepLimit || sum.Steps != 10 || sum.Time != 10 {
		t.Fatalf("invalid summary: %s", sum)
	}
	if len(rec.Snapshots) != 11 {
		t.Fatalf("expected the initial state and 10 steps, got %d records", len(rec.Snapshots))
	}
	for i, snap := range rec.Snapshots {
		if snap.Step != uint64(i) || snap.Time != float64(i) {
			t.Fatalf("record #%d is step %d at %f", i, snap.Step, snap.Time)
		}
	}
	if rec.Snapshots[0].Previews["spacetime"]["speed"] != 0 {
		t.Fatalf("first record is not the initial state: %s", rec.Snapshots[0].Previews["spacetime"])
	}
	if sum.Δv <= 0 || sum.FuelUsed <= 0 || sum.Distance <= 0 {
		t.Fatalf("craft did not move: %s", sum)
	}
}

func TestSimulationFuelExhausted(t *testing.T) {
	bp := IoRamBeta
	bp.Name = "short"
	bp.ScoopRadius = 0
	bp.FuelCapacity = 5.5 * bp.Thrust / bp.ExhaustVelocity
	r := quietRamjet(t, bp)
	sum, err := quietSim(t, r, SimConfig{Step: 1}).Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != FuelExhausted || sum.Steps != 6 {
		t.Fatalf("invalid summary: %s", sum)
	}
	if !r.Tank.IsEmpty() || r.Mass() != r.CoreMass() {
		t.Fatalf("tank should be empty: %s", r.Tank)
	}
}

func TestSimulationTimeLimit(t *testing.T) {
	r := quietRamjet(t, IoRamBeta, WithRelativity())
	sum, err := quietSim(t, r, SimConfig{Step: 1, MaxTime: 5.5, MaxSteps: 100}).Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Reason != TimeLimit || sum.Steps != 6 || sum.Time != 6 {
		t.Fatalf("invalid summary: %s", sum)
	}
	if sum.ProperTime > sum.Time || sum.ProperTime <= 0 {
		t.Fatalf("invalid proper time %f", sum.ProperTime)
	}
}

func TestSimulationSnapshot(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	sim := quietSim(t, quietRamjet(t, IoRamBeta), SimConfig{Step: Hour, MaxSteps: 24, Epoch: epoch})
	if _, err := sim.Run(); err != nil {
		t.Fatal(err)
	}
	snap := sim.Snapshot()
	if snap.Step != 24 || sim.Step() != 24 || sim.Time() != Day {
		t.Fatalf("invalid snapshot %d @ %f", snap.Step, snap.Time)
	}
	// J2000 plus a day.
	if !floats.EqualWithinAbs(snap.JD, 2451546.0, 1e-9) {
		t.Fatalf("invalid Julian date %f", snap.JD)
	}
}

func TestSimulationInvalidStep(t *testing.T) {
	for _, step := range []float64{0, -1, math.NaN()} {
		if _, err := NewSimulation(quietRamjet(t, IoRamBeta), SimConfig{Step: step}); err == nil {
			t.Fatalf("step %f should be refused", step)
		}
	}
}

type failingRecorder struct {
	after  int
	closed bool
}

var errRecorder = errors.New("disk full")

func (f *failingRecorder) Record(Snapshot) error {
	if f.after == 0 {
		return errRecorder
	}
	f.after--
	return nil
}

func (f *failingRecorder) Close() error {
	f.closed = true
	return nil
}

func TestSimulationRecorderError(t *testing.T) {
	rec := &failingRecorder{after: 3}
	sim := quietSim(t, quietRamjet(t, IoRamBeta), SimConfig{Step: 1, MaxSteps: 10, Recorder: rec})
	if _, err := sim.Run(); !errors.Is(err, errRecorder) {
		t.Fatalf("expected the recorder error, got %v", err)
	}
	if sim.Step() != 3 || !rec.closed {
		t.Fatalf("simulation should stop at step 3 and close the recorder (step %d, closed %t)", sim.Step(), rec.closed)
	}
}

func TestSimulationMetrics(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRamjet(t, IoRamBeta)
	if _, err = quietSim(t, r, SimConfig{Step: 1, MaxSteps: 5, Metrics: m}).Run(); err != nil {
		t.Fatal(err)
	}
	if steps := testutil.ToFloat64(m.Steps); steps != 5 {
		t.Fatalf("invalid step count %f", steps)
	}
	if fuel := testutil.ToFloat64(m.Resources.WithLabelValues("tank")); fuel != r.Tank.Level() {
		t.Fatalf("invalid tank level %f", fuel)
	}
}

func TestEndReasonString(t *testing.T) {
	for reason, expected := range map[EndReason]string{running: "running", FuelExhausted: "fuel exhausted", TimeLimit: "time limit", StepLimit: "step limit"} {
		if reason.String() != expected {
			t.Fatalf("%d: got %s", reason, reason)
		}
	}
	assertPanic(t, func() {
		_ = EndReason(42).String()
	})
}
