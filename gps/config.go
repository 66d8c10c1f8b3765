package gps

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Unit conversion factors
const (
	mphToMPS      = 0.44704
	kmhToMPS      = 1000.0 / 3600.0
	knotsToMPS    = 1852.0 / 3600.0
	mpsToKnots    = 3600.0 / 1852.0
	metersPerMile = 1609.344
)

// SpeedUnit names the unit Config.Speed is expressed in
type SpeedUnit string

// Supported speed units
const (
	MilesPerHour      SpeedUnit = "mph"
	KilometersPerHour SpeedUnit = "kmh"
	MetersPerSecond   SpeedUnit = "mps"
	Knots             SpeedUnit = "knots"
)

// ParseSpeedUnit accepts the unit names used on the command line
func ParseSpeedUnit(s string) (SpeedUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mph":
		return MilesPerHour, nil
	case "kmh", "km/h", "kph":
		return KilometersPerHour, nil
	case "mps", "m/s":
		return MetersPerSecond, nil
	case "knots", "kn", "kt":
		return Knots, nil
	}
	return "", fmt.Errorf("%w: unknown speed unit %q (want mph, kmh, mps or knots)", ErrInvalidParameter, s)
}

// ToMPS converts a speed in this unit to meters per second
func (u SpeedUnit) ToMPS(speed float64) float64 {
	switch u {
	case KilometersPerHour:
		return speed * kmhToMPS
	case MetersPerSecond:
		return speed
	case Knots:
		return speed * knotsToMPS
	default:
		return speed * mphToMPS
	}
}

// Config holds all options for turning a route into a timed track
type Config struct {
	Speed       float64   // target speed in SpeedUnit
	SpeedUnit   SpeedUnit // unit of Speed (default mph)
	MaxSpacing  float64   // max gap between output points in meters (0 = distance covered in one second)
	MinSpacing  float64   // points closer than this to the previous kept point are dropped (meters)
	MaxPoints   int       // thin the simplified route to about this many points before densifying (0 = off)
	StartTime   time.Time // timestamp of the first output point
	TrackName   string    // <name> of the generated track
	Creator     string    // creator attribute of the generated GPX document
	StatsOnly   bool      // only analyze the input, skip all later stages
	Satellites  int       // satellites reported in NMEA output
	ReplaySpeed float64   // NMEA replay speed multiplier (1.0 = real-time)
	SerialPort  string    // serial device for NMEA replay (empty = none)
	BaudRate    int       // serial baud rate
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Speed:       35.0,
		SpeedUnit:   MilesPerHour,
		MaxSpacing:  0,
		MinSpacing:  1.0,
		MaxPoints:   0,
		StartTime:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		TrackName:   "Emulator Simulation",
		Creator:     "gpx-emulator-sim",
		StatsOnly:   false,
		Satellites:  8,
		ReplaySpeed: 1.0,
		BaudRate:    9600,
	}
}

// SpeedMPS returns the configured speed in meters per second
func (c *Config) SpeedMPS() float64 {
	return c.SpeedUnit.ToMPS(c.Speed)
}

// EffectiveMaxSpacing returns MaxSpacing, or the distance travelled in one
// second at the configured speed when MaxSpacing is unset.
func (c *Config) EffectiveMaxSpacing() float64 {
	if c.MaxSpacing > 0 {
		return c.MaxSpacing
	}
	return c.SpeedMPS()
}

// Validate checks the options the pipeline uses and returns an error if one
// is invalid. NMEA and serial options are checked by ValidateReplay.
func (c *Config) Validate() error {
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return invalidParameter(ErrInvalidSpeed, c.Speed)
	}
	if c.SpeedUnit != "" {
		if _, err := ParseSpeedUnit(string(c.SpeedUnit)); err != nil {
			return err
		}
	}
	if c.MaxSpacing < 0 || math.IsNaN(c.MaxSpacing) {
		return invalidParameter(ErrInvalidSpacing, c.MaxSpacing)
	}
	if c.MinSpacing < 0 || math.IsNaN(c.MinSpacing) {
		return invalidParameter(ErrInvalidMinSpacing, c.MinSpacing)
	}
	if c.MaxPoints < 0 {
		return invalidParameter(ErrInvalidMaxPoints, float64(c.MaxPoints))
	}
	return nil
}

// ValidateReplay checks the NMEA output and serial replay options
func (c *Config) ValidateReplay() error {
	if c.Satellites < 4 || c.Satellites > 12 {
		return invalidParameter(ErrInvalidSatellites, float64(c.Satellites))
	}
	if !(c.ReplaySpeed > 0) {
		return invalidParameter(ErrInvalidReplaySpeed, c.ReplaySpeed)
	}
	if c.BaudRate <= 0 {
		return &InvalidParameterError{Name: "baud", Value: float64(c.BaudRate), Reason: "must be positive"}
	}
	return nil
}
