package gps

import (
	"math"
	"time"
)

// elapsedNoise keeps floating point error in the cumulative travel time from
// flooring an exact whole second down to the previous one.
const elapsedNoise = 1e-6

// AssignTimestamps gives every point a whole-second timestamp derived from
// travelling the route at speedMPS, starting at start (truncated to UTC whole
// seconds). The first point is at second 0.
//
// Emitted seconds are strictly increasing: when a point's travel time floors
// to a second that is not after the previous point's, it is bumped to the
// previous second + 1. On densely spaced routes this lets the emitted clock run
// ahead of the physical travel time; the drift is not corrected afterwards.
func AssignTimestamps(route Route, speedMPS float64, start time.Time) ([]TimedPoint, error) {
	if speedMPS <= 0 || math.IsNaN(speedMPS) || math.IsInf(speedMPS, 0) {
		return nil, invalidParameter(ErrInvalidSpeed, speedMPS)
	}

	start = start.UTC().Truncate(time.Second)
	result := make([]TimedPoint, 0, len(route))

	var elapsed float64
	var lastSecond int64 = -1

	for i, p := range route {
		if i > 0 {
			elapsed += Distance(route[i-1], p) / speedMPS
		}

		second := int64(math.Floor(elapsed + elapsedNoise))
		if second <= lastSecond {
			second = lastSecond + 1
		}
		lastSecond = second

		result = append(result, TimedPoint{
			GeoPoint: p,
			Second:   second,
			Time:     start.Add(time.Duration(second) * time.Second),
		})
	}

	return result, nil
}

// Elapsed returns the emitted duration of a timed track, from its first to its last point
func Elapsed(points []TimedPoint) time.Duration {
	if len(points) < 2 {
		return 0
	}
	return time.Duration(points[len(points)-1].Second-points[0].Second) * time.Second
}
