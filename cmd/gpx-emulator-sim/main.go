package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bucknalla/gpx-emulator-sim/gps"
	"github.com/urfave/cli/v2"
	"go.bug.st/serial"
)

// Version information - populated at build time via ldflags
var (
	Version   = "dev"     // Will be set to git tag if available, otherwise "dev"
	Commit    = "unknown" // Will be set to git commit hash
	BuildDate = "unknown" // Will be set to build timestamp
)

// openSerial opens the NMEA replay device
var openSerial = func(name string, baud int) (io.WriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	return serial.Open(name, mode)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func versionString() string {
	if Version != "dev" {
		return fmt.Sprintf("v%s", Version)
	}
	return Commit
}

func newApp() *cli.App {
	defaults := gps.DefaultConfig()

	return &cli.App{
		Name:      "gpx-emulator-sim",
		Usage:     "Turn a GPX route into a densely sampled, timestamped track for emulator playback",
		UsageText: "gpx-emulator-sim [options] INPUT.gpx",
		Version:   versionString(),
		Metadata: map[string]interface{}{
			"commit":    Commit,
			"buildDate": BuildDate,
		},
		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:  "speed",
				Usage: "Target speed in --unit",
				Value: defaults.Speed,
			},
			&cli.StringFlag{
				Name:  "unit",
				Usage: "Speed unit: mph, kmh, mps or knots",
				Value: string(defaults.SpeedUnit),
			},
			&cli.Float64Flag{
				Name:  "spacing",
				Usage: "Max distance between points in meters (0 = distance covered in one second)",
				Value: defaults.MaxSpacing,
			},
			&cli.Float64Flag{
				Name:  "min-spacing",
				Usage: "Drop points closer than this to the previous kept point (meters)",
				Value: defaults.MinSpacing,
			},
			&cli.IntFlag{
				Name:  "max-points",
				Usage: "Thin the route to about this many points before interpolating (0 = off)",
				Value: defaults.MaxPoints,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (default: INPUT-sim.gpx)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Track name (default: \"INPUT (SPEEDUNIT sim)\")",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Timestamp of the first point (RFC 3339)",
				Value: defaults.StartTime.Format(time.RFC3339),
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Only print density analysis, don't generate output",
			},
			&cli.StringFlag{
				Name:  "nmea",
				Usage: "Also write the track as NMEA 0183 sentences to `FILE`",
			},
			&cli.StringFlag{
				Name:  "serial",
				Usage: "Replay the track as NMEA sentences on serial `PORT` (e.g., /dev/ttyUSB0, COM1)",
			},
			&cli.IntFlag{
				Name:  "baud",
				Usage: "Serial port baud rate",
				Value: defaults.BaudRate,
			},
			&cli.Float64Flag{
				Name:  "replay-speed",
				Usage: "Replay speed multiplier (1.0=real-time, 2.0=2x speed, 0.5=half speed)",
				Value: defaults.ReplaySpeed,
			},
			&cli.IntFlag{
				Name:  "satellites",
				Usage: "Number of satellites reported in NMEA output (4-12)",
				Value: defaults.Satellites,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json",
				Value: "text",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress the report and progress bars",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Config file (default: ./gpx-emulator-sim.yaml or ~/.config/gpx-emulator-sim/gpx-emulator-sim.yaml)",
			},
		},
		Action: run,
		// errors are reported by main so tests can run the app in-process
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one input GPX file", 2)
	}
	input := c.Args().First()

	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	logger := setupLogging(s.LogLevel, s.LogFormat, c.App.ErrWriter)

	config, err := s.config(input)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	out := c.App.Writer
	if s.Quiet {
		out = io.Discard
	}

	fmt.Fprintf(out, "Parsing %s...\n", input)

	progress := newStageProgress(c.App.ErrWriter, !s.Quiet)
	pipeline := gps.NewPipeline(config)
	pipeline.Logger = logger
	pipeline.OnStage = progress.stage

	result, err := pipeline.RunFile(input)
	progress.done()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	printStats(out, input, result.Original, config)
	if config.StatsOnly {
		return nil
	}
	printStages(out, result, config)

	output := s.outputPath(input)
	if err := gps.WriteTrackFile(output, config.TrackName, config.Creator, result.Points); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger.Info("track written", "file", output, "points", len(result.Points))

	if s.NMEA != "" {
		if err := writeNMEAFile(s.NMEA, result.Points, config.Satellites); err != nil {
			return cli.Exit(err.Error(), 1)
		}
		logger.Info("NMEA written", "file", s.NMEA)
	}

	printSummary(out, output, result, config)

	if config.SerialPort != "" {
		if err := replay(c.Context, c.App.ErrWriter, logger, config, result.Points, !s.Quiet); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn("replay interrupted")
				return nil
			}
			return cli.Exit(err.Error(), 1)
		}
	}
	return nil
}

func writeNMEAFile(filename string, points []gps.TimedPoint, satellites int) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create NMEA file %s: %w", filename, err)
	}
	w := bufio.NewWriter(file)
	if err := gps.WriteNMEA(w, points, satellites); err != nil {
		file.Close()
		os.Remove(filename)
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(filename)
		return fmt.Errorf("failed to write NMEA file %s: %w", filename, err)
	}
	return file.Close()
}

// replay paces the track onto the configured serial port until done or ctx is cancelled
func replay(ctx context.Context, progressOut io.Writer, logger *slog.Logger, config gps.Config, points []gps.TimedPoint, visible bool) error {
	port, err := openSerial(config.SerialPort, config.BaudRate)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", config.SerialPort, err)
	}
	defer port.Close()

	player, err := gps.NewPlayer(port, config.ReplaySpeed, config.Satellites)
	if err != nil {
		return err
	}

	logger.Info("replaying track",
		"port", config.SerialPort,
		"baud", config.BaudRate,
		"speed", config.ReplaySpeed,
		"duration", player.PlaybackDuration(points))

	bar := newReplayBar(progressOut, len(points), visible)
	player.OnPoint(func(index, total int) {
		_ = bar.Set(index + 1)
	})
	defer bar.Finish()

	return player.Play(ctx, points)
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
