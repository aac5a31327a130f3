package ramjet

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the progress of a simulation as Prometheus metrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	Steps        prometheus.Counter
	StepDuration prometheus.Histogram
	Resources    *prometheus.GaugeVec // labeled by tank
	Kinematics   *prometheus.GaugeVec // labeled by quantity
	Throttle     *prometheus.GaugeVec // labeled by part
}

// NewMetrics registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ramjet_steps_total",
		Help: "Total number of simulation steps performed.",
	}), "ramjet_steps_total")
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ramjet_step_duration_seconds",
		Help:    "Wall clock duration of a simulation step.",
		Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
	}), "ramjet_step_duration_seconds")
	if err != nil {
		return nil, err
	}
	resources, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ramjet_tank_level",
		Help: "Current level of each tank (kg of fuel, J in the battery).",
	}, []string{"tank"}), "ramjet_tank_level")
	if err != nil {
		return nil, err
	}
	kinematics, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ramjet_kinematics",
		Help: "Current distance from origin (m), speed (m/s), acceleration (m/s^2) and proper time (s).",
	}, []string{"quantity"}), "ramjet_kinematics")
	if err != nil {
		return nil, err
	}
	throttle, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ramjet_throttle",
		Help: "Throttle of each power consuming part during the last step.",
	}, []string{"part"}), "ramjet_throttle")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:     gatherer,
		Steps:        steps,
		StepDuration: duration,
		Resources:    resources,
		Kinematics:   kinematics,
		Throttle:     throttle,
	}, nil
}

// Observe records the state of the craft after a step which took the provided wall clock duration.
func (m *Metrics) Observe(r *Ramjet, took time.Duration) {
	if m == nil {
		return
	}
	m.Steps.Inc()
	m.StepDuration.Observe(took.Seconds())
	m.Resources.WithLabelValues(r.Tank.Name()).Set(r.Tank.Level())
	m.Resources.WithLabelValues(r.Battery.Name()).Set(r.Battery.Level())
	m.Kinematics.WithLabelValues("distance").Set(r.Spacetime.Position().Norm())
	m.Kinematics.WithLabelValues("speed").Set(r.Spacetime.Velocity().Norm())
	m.Kinematics.WithLabelValues("acceleration").Set(r.Spacetime.Acceleration().Norm())
	m.Kinematics.WithLabelValues("proper_time").Set(r.Spacetime.Time())
	m.Throttle.WithLabelValues(r.Thruster.Name()).Set(r.Thruster.Preview()["throttle"])
	m.Throttle.WithLabelValues(r.Scoop.Name()).Set(r.Scoop.Preview()["throttle"])
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register registers the collector, or returns the one already registered under the same name.
func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return c, err
	}
	return c, nil
}
