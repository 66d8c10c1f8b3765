package gps

import (
	"io"
	"log/slog"
	"time"
)

// Stage names reported through Pipeline.OnStage
const (
	StageAnalyze    = "analyze"
	StageSimplify   = "simplify"
	StageThin       = "thin"
	StageDensify    = "densify"
	StageTimestamps = "timestamps"
)

// Stages lists the stages of a full run in execution order
var Stages = []string{StageAnalyze, StageSimplify, StageThin, StageDensify, StageTimestamps}

// Result is the outcome of a pipeline run
type Result struct {
	Original   SpacingReport  // density of the input route
	Final      *SpacingReport // density of the output route (nil in stats-only mode)
	Points     []TimedPoint   // timed output track (nil in stats-only mode)
	Removed    int            // near-duplicates dropped by Simplify
	Thinned    int            // points dropped by Thin
	Inserted   int            // points added by Densify
	MaxSpacing float64        // effective max spacing in meters
	SpeedMPS   float64        // effective speed in meters per second
	TravelTime time.Duration  // physical travel time of the output route at SpeedMPS
}

// Pipeline runs route extraction through timestamp assignment with an explicit configuration
type Pipeline struct {
	Config  Config
	Logger  *slog.Logger
	OnStage func(stage string, points int) // called after each completed stage
}

// NewPipeline creates a pipeline for config with logging discarded
func NewPipeline(config Config) *Pipeline {
	return &Pipeline{
		Config: config,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// RunFile reads filename and runs the pipeline over its route
func (p *Pipeline) RunFile(filename string) (*Result, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	route, err := ReadRouteFile(filename)
	if err != nil {
		return nil, err
	}
	p.logger().Debug("route extracted", "file", filename, "points", len(route))

	return p.Run(route)
}

// Run processes an already extracted route. The input is never modified.
func (p *Pipeline) Run(route Route) (*Result, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(route) < 2 {
		return nil, &EmptyRouteError{Points: len(route)}
	}

	log := p.logger()
	result := &Result{
		MaxSpacing: cfg.EffectiveMaxSpacing(),
		SpeedMPS:   cfg.SpeedMPS(),
	}

	result.Original = AnalyzeDensity(route)
	p.stage(StageAnalyze, len(route))
	log.Debug("input analyzed",
		"points", result.Original.Points,
		"total_m", result.Original.Total,
		"median_m", result.Original.Median)

	if cfg.StatsOnly {
		return result, nil
	}

	simplified := Simplify(route, cfg.MinSpacing)
	result.Removed = len(route) - len(simplified)
	p.stage(StageSimplify, len(simplified))
	log.Debug("near-duplicates removed", "removed", result.Removed, "min_spacing_m", cfg.MinSpacing)

	thinned := Thin(simplified, cfg.MaxPoints)
	result.Thinned = len(simplified) - len(thinned)
	p.stage(StageThin, len(thinned))
	if cfg.MaxPoints > 0 {
		log.Debug("route thinned", "removed", result.Thinned, "max_points", cfg.MaxPoints)
	}

	dense, err := Densify(thinned, result.MaxSpacing)
	if err != nil {
		return nil, err
	}
	result.Inserted = len(dense) - len(thinned)
	p.stage(StageDensify, len(dense))
	log.Debug("points interpolated", "inserted", result.Inserted, "max_spacing_m", result.MaxSpacing)

	points, err := AssignTimestamps(dense, result.SpeedMPS, cfg.StartTime)
	if err != nil {
		return nil, err
	}
	result.Points = points
	p.stage(StageTimestamps, len(points))

	final := AnalyzeDensity(dense)
	result.Final = &final
	result.TravelTime = final.TravelTime(result.SpeedMPS)
	log.Debug("timestamps assigned",
		"points", len(points),
		"emitted", Elapsed(points),
		"physical", result.TravelTime)

	return result, nil
}

func (p *Pipeline) stage(name string, points int) {
	if p.OnStage != nil {
		p.OnStage(name, points)
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
