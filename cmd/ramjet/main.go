package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	ramjet "github.com/Finkch/Ion-Ramjet-Beta"
	kitlog "github.com/go-kit/kit/log"
)

var (
	confDir  string
	craft    string
	step     time.Duration
	maxSteps uint64
	output   string
	backend  string
	debug    bool
	list     bool
	metrics  string
)

func init() {
	flag.StringVar(&confDir, "config", os.Getenv(ramjet.ConfigEnv), "directory of ramjet.toml (defaults to $"+ramjet.ConfigEnv+")")
	flag.StringVar(&craft, "craft", "", "craft to simulate (overrides simulation.craft)")
	flag.DurationVar(&step, "step", 0, "simulated time per step (overrides simulation.step)")
	flag.Uint64Var(&maxSteps, "steps", 0, "stop after this many steps (overrides simulation.max_steps)")
	flag.StringVar(&output, "out", "", "recording path (overrides recorder.path)")
	flag.StringVar(&backend, "recorder", "", "file, sqlite, memory or none (overrides recorder.backend)")
	flag.BoolVar(&debug, "debug", false, "perform one step per status line")
	flag.BoolVar(&list, "list", false, "list the crafts in the hangar and exit")
	flag.StringVar(&metrics, "metrics", "", "serve Prometheus metrics on this address (overrides general.metrics_addr)")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)

	conf, err := ramjet.LoadConfig(confDir)
	if err != nil {
		fatal(logger, err)
	}
	if list {
		fmt.Println(strings.Join(conf.Hangar.Names(), "\n"))
		return
	}
	if conf.Quiet {
		logger = kitlog.NewNopLogger()
	}

	sum, err := run(override(conf), logger)
	if err != nil {
		fatal(logger, err)
	}
	fmt.Println(sum)
}

// override applies the command line flags on top of the configuration.
func override(conf ramjet.Config) ramjet.Config {
	if craft != "" {
		conf.Craft = craft
	}
	if step > 0 {
		conf.Step = step
	}
	if maxSteps > 0 {
		conf.MaxSteps = maxSteps
	}
	if output != "" {
		conf.OutputPath = output
	}
	if backend != "" {
		conf.Recorder = strings.ToLower(backend)
	}
	if metrics != "" {
		conf.MetricsAddr = metrics
	}
	if debug {
		conf.Lockstep = true
		conf.PrintEvery = time.Second
	}
	return conf
}

func run(conf ramjet.Config, logger kitlog.Logger) (ramjet.Summary, error) {
	bp, err := conf.Hangar.Get(conf.Craft)
	if err != nil {
		if errors.Is(err, ramjet.ErrUnknownCraft) {
			err = fmt.Errorf("%w (available: %s)", err, strings.Join(conf.Hangar.Names(), ", "))
		}
		return ramjet.Summary{}, err
	}
	opts := []ramjet.Option{ramjet.WithLogger(logger)}
	if conf.Relativistic {
		opts = append(opts, ramjet.WithRelativity())
	}
	craft, err := ramjet.NewRamjet(bp, conf.Constants, opts...)
	if err != nil {
		return ramjet.Summary{}, err
	}

	epoch := conf.Epoch
	if epoch.IsZero() {
		epoch = time.Now().UTC()
	}
	rec, err := conf.OpenRecorder(ramjet.Metadata{Craft: bp, Step: conf.Step.Seconds(), Epoch: epoch, Constants: conf.Constants})
	if err != nil {
		return ramjet.Summary{}, err
	}

	var m *ramjet.Metrics
	if conf.MetricsAddr != "" {
		if m, err = ramjet.NewMetrics(nil); err != nil {
			return ramjet.Summary{}, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		go func() {
			if err := http.ListenAndServe(conf.MetricsAddr, mux); err != nil {
				logger.Log("level", "warning", "subsys", "metrics", "err", err)
			}
		}()
	}

	sim, err := ramjet.NewSimulation(craft, ramjet.SimConfig{
		Step:       conf.Step.Seconds(),
		MaxTime:    conf.MaxTime,
		MaxSteps:   conf.MaxSteps,
		PrintEvery: conf.PrintEvery,
		Lockstep:   conf.Lockstep,
		Epoch:      epoch,
		Constants:  conf.Constants,
		Recorder:   rec,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return ramjet.Summary{}, err
	}
	return sim.Run()
}

func fatal(logger kitlog.Logger, err error) {
	logger.Log("level", "critical", "err", err)
	os.Exit(1)
}
