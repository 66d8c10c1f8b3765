package gps

import (
	"math"
	"sort"
	"strconv"
)

// spacingBounds are the histogram edges in meters. The final bucket is open-ended.
var spacingBounds = []float64{0, 5, 15, 50, 100}

// AnalyzeDensity computes spacing statistics over consecutive point pairs.
// The median is the element at sorted index n/2, not an average of the two
// middle values. The route is never modified.
//
// AnalyzeDensity panics if the route has fewer than 2 points; callers are
// expected to reject such routes at extraction time.
func AnalyzeDensity(route Route) SpacingReport {
	if len(route) < 2 {
		panic("gps: AnalyzeDensity needs at least 2 points, got " + strconv.Itoa(len(route)))
	}

	distances := make([]float64, len(route)-1)
	for i := 1; i < len(route); i++ {
		distances[i-1] = Distance(route[i-1], route[i])
	}

	report := SpacingReport{
		Points:    len(route),
		Segments:  len(distances),
		Min:       math.Inf(1),
		Max:       math.Inf(-1),
		Histogram: newHistogram(),
	}

	for _, d := range distances {
		report.Total += d
		report.Min = math.Min(report.Min, d)
		report.Max = math.Max(report.Max, d)
		report.Histogram[bucketIndex(d)].Count++
	}
	report.Average = report.Total / float64(len(distances))

	sorted := append([]float64(nil), distances...)
	sort.Float64s(sorted)
	report.Median = sorted[len(sorted)/2]

	return report
}

func newHistogram() []SpacingBucket {
	buckets := make([]SpacingBucket, len(spacingBounds))
	for i, lower := range spacingBounds {
		upper := math.Inf(1)
		if i+1 < len(spacingBounds) {
			upper = spacingBounds[i+1]
		}
		buckets[i] = SpacingBucket{Lower: lower, Upper: upper}
	}
	return buckets
}

func bucketIndex(d float64) int {
	for i := len(spacingBounds) - 1; i > 0; i-- {
		if d >= spacingBounds[i] {
			return i
		}
	}
	return 0
}

func trimMeters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMeters(v float64) string {
	return trimMeters(v) + "m"
}
