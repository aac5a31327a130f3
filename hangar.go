package ramjet

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrUnknownCraft is returned when a craft is not in the hangar.
var ErrUnknownCraft = errors.New("unknown craft")

// Blueprint holds every parameter needed to build a Ramjet.
type Blueprint struct {
	Name            string  `mapstructure:"name" json:"name"`
	CoreMass        float64 `mapstructure:"core_mass" json:"core_mass"`               // kg
	FuelCapacity    float64 `mapstructure:"fuel_capacity" json:"fuel_capacity"`       // kg
	BatteryCapacity float64 `mapstructure:"battery_capacity" json:"battery_capacity"` // J
	Thrust          float64 `mapstructure:"thrust" json:"thrust"`                     // N
	ExhaustVelocity float64 `mapstructure:"v_e" json:"v_e"`                           // m/s
	EnginePower     float64 `mapstructure:"engine_power" json:"engine_power"`         // W
	ScoopPower      float64 `mapstructure:"scoop_power" json:"scoop_power"`           // W
	ScoopRadius     float64 `mapstructure:"scoop_radius" json:"scoop_radius"`         // m
	ScoopEfficiency float64 `mapstructure:"scoop_efficiency" json:"scoop_efficiency"` // fraction kept, 0 collects nothing
	GeneratorPower  float64 `mapstructure:"power" json:"power"`                       // W
}

// Validate returns an error if this blueprint cannot be built.
func (bp Blueprint) Validate() error {
	switch {
	case !(bp.CoreMass > 0) || math.IsInf(bp.CoreMass, 1):
		return fmt.Errorf("%w %s: core mass must be positive", ErrInvalidBlueprint, bp.Name)
	case !(bp.ExhaustVelocity > 0) || math.IsInf(bp.ExhaustVelocity, 1):
		return fmt.Errorf("%w %s: exhaust velocity must be positive", ErrInvalidBlueprint, bp.Name)
	case !(bp.ScoopEfficiency >= 0 && bp.ScoopEfficiency <= 1):
		return fmt.Errorf("%w %s: scoop efficiency must be within [0, 1]", ErrInvalidBlueprint, bp.Name)
	}
	for name, val := range map[string]float64{
		"fuel capacity":    bp.FuelCapacity,
		"battery capacity": bp.BatteryCapacity,
		"thrust":           bp.Thrust,
		"engine power":     bp.EnginePower,
		"scoop power":      bp.ScoopPower,
		"scoop radius":     bp.ScoopRadius,
		"generator power":  bp.GeneratorPower,
	} {
		if !(val >= 0) || math.IsInf(val, 1) {
			return fmt.Errorf("%w %s: %s must be non-negative and finite", ErrInvalidBlueprint, bp.Name, name)
		}
	}
	return nil
}

func (bp Blueprint) String() string {
	return fmt.Sprintf("%s: %g kg dry, %g kg tank, %g J battery, %g N @ %g m/s", bp.Name, bp.CoreMass, bp.FuelCapacity, bp.BatteryCapacity, bp.Thrust, bp.ExhaustVelocity)
}

/* Definitions */

// IoRamBeta is the classic test craft.
// Its thrust is that of xenon ions (131.293 u) scaled to hydrogen (1.00784 u).
var IoRamBeta = Blueprint{
	Name:            "ioRam-Beta",
	CoreMass:        100,
	FuelCapacity:    10,
	BatteryCapacity: 1e7,
	Thrust:          26,
	ExhaustVelocity: 4.9e4,
	EnginePower:     1.5e6,
	ScoopPower:      1e6,
	ScoopRadius:     1e2,
	ScoopEfficiency: 1,
	GeneratorPower:  1e8,
}

// Dawn is the Dawn spacecraft repurposed as a ramjet: its 63 kg solar
// panels are swapped for ten 57 kg GPHS-RTGs of 300 W each.
var Dawn = dawn()

func dawn() Blueprint {
	const (
		rtgMass     = 57.0
		rtgPower    = 300.0
		rtgCount    = 10.0
		enginePower = 2.3e3
	)
	scoopPower := rtgPower*rtgCount - enginePower
	return Blueprint{
		Name:            "Dawn",
		CoreMass:        621.1 + rtgMass*rtgCount,
		FuelCapacity:    470.6,
		BatteryCapacity: 4233600,
		Thrust:          0.092,
		ExhaustVelocity: 30500,
		EnginePower:     enginePower,
		ScoopPower:      scoopPower,
		ScoopRadius:     math.Sqrt(scoopPower / 10),
		ScoopEfficiency: 1,
		GeneratorPower:  rtgPower * rtgCount,
	}
}

// BlueprintFromString returns the preset blueprint of the provided name (case insensitive).
func BlueprintFromString(name string) (Blueprint, error) {
	switch strings.ToLower(name) {
	case "ioram-beta":
		return IoRamBeta, nil
	case "dawn":
		return Dawn, nil
	default:
		return Blueprint{}, fmt.Errorf("%w '%s'", ErrUnknownCraft, name)
	}
}

// Hangar is a catalog of blueprints: the presets plus any custom ones.
type Hangar struct {
	custom map[string]Blueprint
}

// NewHangar returns a hangar with the presets and the provided custom
// blueprints. A custom blueprint shadows a preset of the same name.
func NewHangar(custom ...Blueprint) *Hangar {
	h := &Hangar{make(map[string]Blueprint)}
	for _, bp := range custom {
		h.Add(bp)
	}
	return h
}

// Add stores a custom blueprint.
func (h *Hangar) Add(bp Blueprint) {
	h.custom[strings.ToLower(bp.Name)] = bp
}

// Get returns the blueprint of the provided name.
func (h *Hangar) Get(name string) (Blueprint, error) {
	if bp, ok := h.custom[strings.ToLower(name)]; ok {
		return bp, nil
	}
	return BlueprintFromString(name)
}

// Names returns the sorted names of all available blueprints.
func (h *Hangar) Names() []string {
	names := []string{IoRamBeta.Name, Dawn.Name}
	for _, bp := range h.custom {
		if _, err := BlueprintFromString(bp.Name); err == nil {
			continue
		}
		names = append(names, bp.Name)
	}
	sort.Strings(names)
	return names
}
