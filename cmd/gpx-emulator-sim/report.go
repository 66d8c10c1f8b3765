package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Bucknalla/gpx-emulator-sim/gps"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	heavyRule = strings.Repeat("=", 60)
	lightRule = strings.Repeat("─", 60)
)

// printStats prints the density report of the input route
func printStats(w io.Writer, filename string, report gps.SpacingReport, config gps.Config) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "\n%s\n", heavyRule)
	p.Fprintf(w, "  GPX Analysis: %s\n", filepath.Base(filename))
	p.Fprintf(w, "%s\n", heavyRule)
	p.Fprintf(w, "  Points:          %d\n", report.Points)
	p.Fprintf(w, "  Total distance:  %.2f km (%.2f mi)\n", report.TotalKilometers(), report.TotalMiles())
	p.Fprintf(w, "\n")
	p.Fprintf(w, "  Point spacing:\n")
	p.Fprintf(w, "    Average:  %.1f m\n", report.Average)
	p.Fprintf(w, "    Median:   %.1f m\n", report.Median)
	p.Fprintf(w, "    Min:      %.2f m\n", report.Min)
	p.Fprintf(w, "    Max:      %.1f m\n", report.Max)
	p.Fprintf(w, "\n")
	p.Fprintf(w, "  Spacing distribution:\n")
	for _, bucket := range report.Histogram {
		p.Fprintf(w, "    %-11s %d segments\n", bucket.Label()+":", bucket.Count)
	}
	p.Fprintf(w, "\n")
	p.Fprintf(w, "  At %s:   %.1f min drive time\n", speedLabel(config), report.TravelTime(config.SpeedMPS()).Minutes())
	p.Fprintf(w, "%s\n\n", heavyRule)
}

// printStages prints what simplification, thinning and densification changed
func printStages(w io.Writer, result *gps.Result, config gps.Config) {
	p := message.NewPrinter(language.English)

	if result.Removed > 0 {
		p.Fprintf(w, "Removed %d near-duplicate points (< %gm apart)\n", result.Removed, config.MinSpacing)
	}
	if result.Thinned > 0 {
		p.Fprintf(w, "Thinned %d points (max points: %d)\n", result.Thinned, config.MaxPoints)
	}
	if result.Inserted > 0 {
		p.Fprintf(w, "Interpolated %d points (max spacing: %.1fm)\n", result.Inserted, result.MaxSpacing)
	}
}

// printSummary prints the closing summary once the track has been written
func printSummary(w io.Writer, output string, result *gps.Result, config gps.Config) {
	p := message.NewPrinter(language.English)
	final := result.Final

	p.Fprintf(w, "\n%s\n", lightRule)
	p.Fprintf(w, "  Output: %s\n", output)
	p.Fprintf(w, "  Points: %d → %d\n", result.Original.Points, len(result.Points))
	p.Fprintf(w, "  Distance: %.2f km (%.2f mi)\n", final.TotalKilometers(), final.TotalMiles())
	p.Fprintf(w, "  Speed: %s (%.1f m/s)\n", speedLabel(config), result.SpeedMPS)
	p.Fprintf(w, "  Max spacing: %.1fm\n", result.MaxSpacing)
	p.Fprintf(w, "  Avg spacing: %.1fm\n", final.Average)
	p.Fprintf(w, "  Duration: %.1f min\n", result.TravelTime.Minutes())
	p.Fprintf(w, "  Avg interval: %.2fs between points\n", final.Average/result.SpeedMPS)
	p.Fprintf(w, "%s\n\n", lightRule)
}

func speedLabel(config gps.Config) string {
	return message.NewPrinter(language.English).Sprintf("%g %s", config.Speed, config.SpeedUnit)
}
