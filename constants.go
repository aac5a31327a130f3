package ramjet

const (
	// Minute in seconds.
	Minute = 60.0
	// Hour in seconds.
	Hour = 60 * Minute
	// Day in seconds.
	Day = 24 * Hour
	// Year is a Julian year in seconds.
	Year = 365.25 * Day

	// SpeedOfLight in m/s.
	SpeedOfLight = 299792458.0
	// HydrogenDensity is the mass density of neutral hydrogen in the local
	// interstellar medium (about one atom per cubic centimeter), in kg/m^3.
	HydrogenDensity = 1.6735575e-21
)

// Constants are the physical constants the simulation is computed against.
// They are passed to the components which need them so that a run can use
// alternate values (e.g. a denser medium).
type Constants struct {
	HydrogenDensity float64 // kg/m^3
	SpeedOfLight    float64 // m/s
	Year            float64 // s
}

// DefaultConstants returns the real world constants.
func DefaultConstants() Constants {
	return Constants{HydrogenDensity: HydrogenDensity, SpeedOfLight: SpeedOfLight, Year: Year}
}
