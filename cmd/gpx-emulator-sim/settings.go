package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Bucknalla/gpx-emulator-sim/gps"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// settings is the merged view of defaults, config file, environment and flags
type settings struct {
	Speed       float64 `mapstructure:"speed"`
	Unit        string  `mapstructure:"unit"`
	Spacing     float64 `mapstructure:"spacing"`
	MinSpacing  float64 `mapstructure:"min_spacing"`
	MaxPoints   int     `mapstructure:"max_points"`
	Output      string  `mapstructure:"output"`
	Name        string  `mapstructure:"name"`
	Start       string  `mapstructure:"start"`
	Stats       bool    `mapstructure:"stats"`
	NMEA        string  `mapstructure:"nmea"`
	Serial      string  `mapstructure:"serial"`
	Baud        int     `mapstructure:"baud"`
	ReplaySpeed float64 `mapstructure:"replay_speed"`
	Satellites  int     `mapstructure:"satellites"`
	LogLevel    string  `mapstructure:"log_level"`
	LogFormat   string  `mapstructure:"log_format"`
	Quiet       bool    `mapstructure:"quiet"`
}

// settingFlags are the CLI flags that override config file and environment values
var settingFlags = []string{
	"speed", "unit", "spacing", "min-spacing", "max-points", "output", "name",
	"start", "stats", "nmea", "serial", "baud", "replay-speed", "satellites",
	"log-level", "log-format", "quiet",
}

const envPrefix = "GPXSIM"

// loadSettings reads settings in increasing precedence: built-in defaults,
// the optional config file, GPXSIM_* environment variables, explicit flags.
func loadSettings(c *cli.Context) (*settings, error) {
	v := viper.New()

	defaults := gps.DefaultConfig()
	v.SetDefault("speed", defaults.Speed)
	v.SetDefault("unit", string(defaults.SpeedUnit))
	v.SetDefault("spacing", defaults.MaxSpacing)
	v.SetDefault("min_spacing", defaults.MinSpacing)
	v.SetDefault("max_points", defaults.MaxPoints)
	v.SetDefault("output", "")
	v.SetDefault("name", "")
	v.SetDefault("start", defaults.StartTime.Format(time.RFC3339))
	v.SetDefault("stats", false)
	v.SetDefault("nmea", "")
	v.SetDefault("serial", "")
	v.SetDefault("baud", defaults.BaudRate)
	v.SetDefault("replay_speed", defaults.ReplaySpeed)
	v.SetDefault("satellites", defaults.Satellites)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("quiet", false)

	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gpx-emulator-sim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "gpx-emulator-sim"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// GPXSIM_MIN_SPACING → min_spacing
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, name := range settingFlags {
		if c.IsSet(name) {
			v.Set(settingKey(name), c.Value(name))
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &s, nil
}

func settingKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// config converts settings into a validated pipeline configuration for input
func (s *settings) config(input string) (gps.Config, error) {
	config := gps.DefaultConfig()

	unit, err := gps.ParseSpeedUnit(s.Unit)
	if err != nil {
		return config, err
	}

	start, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return config, fmt.Errorf("%w: start time %q is not RFC 3339", gps.ErrInvalidParameter, s.Start)
	}

	config.Speed = s.Speed
	config.SpeedUnit = unit
	config.MaxSpacing = s.Spacing
	config.MinSpacing = s.MinSpacing
	config.MaxPoints = s.MaxPoints
	config.StartTime = start
	config.StatsOnly = s.Stats
	config.Satellites = s.Satellites
	config.ReplaySpeed = s.ReplaySpeed
	config.SerialPort = s.Serial
	config.BaudRate = s.Baud
	config.TrackName = s.Name
	if config.TrackName == "" {
		config.TrackName = defaultTrackName(input, s.Speed, unit)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, config.ValidateReplay()
}

// outputPath returns the track file to write, INPUT-sim.gpx next to the input by default
func (s *settings) outputPath(input string) string {
	if s.Output != "" {
		return s.Output
	}
	return filepath.Join(filepath.Dir(input), stem(input)+"-sim.gpx")
}

func defaultTrackName(input string, speed float64, unit gps.SpeedUnit) string {
	return fmt.Sprintf("%s (%s%s sim)", stem(input), strconv.FormatFloat(speed, 'f', -1, 64), unit)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
