package ramjet

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigEnv is the environment variable pointing to the configuration directory.
	ConfigEnv = "RAMJET_CONFIG"
	// ConfigName is the name of the configuration file, without extension.
	ConfigName = "ramjet"
)

// Config is the configuration of a simulation run.
type Config struct {
	Craft        string
	Step         time.Duration
	MaxTime      float64 // s
	MaxSteps     uint64
	PrintEvery   time.Duration
	Lockstep     bool
	Relativistic bool
	Epoch        time.Time
	Constants    Constants

	Recorder   string // "file", "sqlite", "memory" or "none"
	OutputPath string
	FlushBytes int
	BatchSize  int

	Quiet       bool
	MetricsAddr string

	Hangar *Hangar
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.craft", Dawn.Name)
	v.SetDefault("simulation.step", "1h")
	v.SetDefault("simulation.max_years", 100)
	v.SetDefault("simulation.max_steps", 0)
	v.SetDefault("simulation.print_every", "16ms")
	v.SetDefault("simulation.lockstep", false)
	v.SetDefault("simulation.relativistic", false)
	v.SetDefault("simulation.epoch", "")

	v.SetDefault("constants.hydrogen_density", HydrogenDensity)
	v.SetDefault("constants.speed_of_light", SpeedOfLight)
	v.SetDefault("constants.year", Year)

	v.SetDefault("recorder.backend", "file")
	v.SetDefault("recorder.path", "ramjet.jsonl")
	v.SetDefault("recorder.flush_bytes", DefaultFlushBytes)
	v.SetDefault("recorder.batch_size", DefaultBatchSize)

	v.SetDefault("general.quiet", false)
	v.SetDefault("general.metrics_addr", "")
}

// LoadConfig reads ramjet.toml from the provided directory, if any, on top of the defaults.
// An empty directory only returns the defaults.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	if dir != "" {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s/%s.toml: %w", dir, ConfigName, err)
		}
	}
	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	conf := Config{
		Craft:        v.GetString("simulation.craft"),
		Step:         v.GetDuration("simulation.step"),
		MaxTime:      v.GetFloat64("simulation.max_years") * v.GetFloat64("constants.year"),
		MaxSteps:     v.GetUint64("simulation.max_steps"),
		PrintEvery:   v.GetDuration("simulation.print_every"),
		Lockstep:     v.GetBool("simulation.lockstep"),
		Relativistic: v.GetBool("simulation.relativistic"),
		Constants: Constants{
			HydrogenDensity: v.GetFloat64("constants.hydrogen_density"),
			SpeedOfLight:    v.GetFloat64("constants.speed_of_light"),
			Year:            v.GetFloat64("constants.year"),
		},
		Recorder:    strings.ToLower(v.GetString("recorder.backend")),
		OutputPath:  v.GetString("recorder.path"),
		FlushBytes:  v.GetInt("recorder.flush_bytes"),
		BatchSize:   v.GetInt("recorder.batch_size"),
		Quiet:       v.GetBool("general.quiet"),
		MetricsAddr: v.GetString("general.metrics_addr"),
		Hangar:      NewHangar(),
	}
	if conf.Step <= 0 {
		return conf, fmt.Errorf("simulation.step must be positive, got %s", conf.Step)
	}
	if epoch := v.GetString("simulation.epoch"); epoch != "" {
		dt, err := time.Parse(time.RFC3339, epoch)
		if err != nil {
			return conf, fmt.Errorf("could not understand simulation.epoch: %w", err)
		}
		conf.Epoch = dt
	}
	switch conf.Recorder {
	case "file", "sqlite", "memory", "none":
	default:
		return conf, fmt.Errorf("unknown recorder.backend '%s'", conf.Recorder)
	}

	// Custom crafts are [hangar.<name>] tables.
	for name := range v.GetStringMap("hangar") {
		// A scoop keeps everything it sweeps unless told otherwise.
		bp := Blueprint{ScoopEfficiency: 1}
		if err := v.UnmarshalKey("hangar."+name, &bp); err != nil {
			return conf, fmt.Errorf("could not understand hangar.%s: %w", name, err)
		}
		if bp.Name == "" {
			bp.Name = name
		}
		if err := bp.Validate(); err != nil {
			return conf, err
		}
		conf.Hangar.Add(bp)
	}
	return conf, nil
}

// OpenRecorder returns the recorder selected by the configuration, or nil
// when recording is disabled.
func (c Config) OpenRecorder(meta Metadata) (Recorder, error) {
	switch c.Recorder {
	case "file":
		s, err := NewStore(c.OutputPath, meta)
		if err != nil {
			return nil, err
		}
		if c.FlushBytes > 0 {
			s.FlushBytes = c.FlushBytes
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLStore(c.OutputPath, meta.Craft.Name, meta)
		if err != nil {
			return nil, err
		}
		if c.BatchSize > 0 {
			s.BatchSize = c.BatchSize
		}
		return s, nil
	case "memory":
		return NewMemoryStore(meta), nil
	}
	return nil, nil
}
