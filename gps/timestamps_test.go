package gps

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

var testStart = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func seconds(points []TimedPoint) []int64 {
	out := make([]int64, len(points))
	for i, p := range points {
		out[i] = p.Second
	}
	return out
}

func equalSeconds(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssignTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		gaps     []float64
		speed    float64
		expected []int64
	}{
		{
			name:     "Even spacing at 10 m/s",
			gaps:     []float64{50, 50, 50, 50},
			speed:    10,
			expected: []int64{0, 5, 10, 15, 20},
		},
		{
			name:     "Sub-second gaps are bumped",
			gaps:     []float64{1, 1, 1},
			speed:    10,
			expected: []int64{0, 1, 2, 3},
		},
		{
			name: "Mixed floor and bump",
			// cumulative 2.5, 2.6, 3.6, 5.6 seconds
			gaps:     []float64{25, 1, 10, 20},
			speed:    10,
			expected: []int64{0, 2, 3, 4, 5},
		},
		{
			name:     "Slow speed",
			gaps:     []float64{3, 3},
			speed:    0.5,
			expected: []int64{0, 6, 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := northLine(NewGeoPoint(37.7749, -122.4194), tt.gaps...)
			points, err := AssignTimestamps(route, tt.speed, testStart)
			if err != nil {
				t.Fatalf("AssignTimestamps() error = %v", err)
			}

			got := seconds(points)
			if !equalSeconds(got, tt.expected) {
				t.Errorf("AssignTimestamps() seconds = %v, want %v", got, tt.expected)
			}

			for i, p := range points {
				want := testStart.Add(time.Duration(tt.expected[i]) * time.Second)
				if !p.Time.Equal(want) {
					t.Errorf("Point %d time = %v, want %v", i, p.Time, want)
				}
				if p.GeoPoint != route[i] {
					t.Errorf("Point %d position changed: %+v != %+v", i, p.GeoPoint, route[i])
				}
			}
		})
	}
}

func TestAssignTimestampsStrictlyIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 50; i++ {
		route := randomRoute(rng, 1+rng.Intn(80))
		speed := 0.5 + rng.Float64()*40

		points, err := AssignTimestamps(route, speed, testStart)
		if err != nil {
			t.Fatalf("AssignTimestamps() error = %v", err)
		}
		if len(points) != len(route) {
			t.Fatalf("Expected %d points, got %d", len(route), len(points))
		}
		if points[0].Second != 0 || !points[0].Time.Equal(testStart) {
			t.Errorf("First point at second %d (%v), want 0", points[0].Second, points[0].Time)
		}
		for j := 1; j < len(points); j++ {
			if points[j].Second <= points[j-1].Second {
				t.Fatalf("Seconds not strictly increasing at %d: %v", j, seconds(points))
			}
			if !points[j].Time.After(points[j-1].Time) {
				t.Fatalf("Times not strictly increasing at %d", j)
			}
		}
	}
}

func TestAssignTimestampsStartNormalization(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2025, 7, 26, 14, 0, 0, 700*int(time.Millisecond), loc)

	points, err := AssignTimestamps(northLine(NewGeoPoint(0, 0), 10), 5, start)
	if err != nil {
		t.Fatalf("AssignTimestamps() error = %v", err)
	}

	want := time.Date(2025, 7, 26, 12, 0, 0, 0, time.UTC)
	if !points[0].Time.Equal(want) {
		t.Errorf("Start time = %v, want %v", points[0].Time, want)
	}
	if !points[1].Time.Equal(want.Add(2 * time.Second)) {
		t.Errorf("Second point time = %v, want %v", points[1].Time, want.Add(2*time.Second))
	}
}

func TestAssignTimestampsEdgeRoutes(t *testing.T) {
	points, err := AssignTimestamps(nil, 10, testStart)
	if err != nil || len(points) != 0 {
		t.Errorf("Empty route: got %v, %v; want no points and no error", points, err)
	}

	points, err = AssignTimestamps(Route{NewGeoPoint(1, 2)}, 10, testStart)
	if err != nil {
		t.Fatalf("Single point error = %v", err)
	}
	if len(points) != 1 || points[0].Second != 0 {
		t.Errorf("Single point: got %v, want one point at second 0", seconds(points))
	}

	// repeated positions still get distinct seconds
	p := NewGeoPoint(1, 2)
	points, _ = AssignTimestamps(Route{p, p, p}, 10, testStart)
	if !equalSeconds(seconds(points), []int64{0, 1, 2}) {
		t.Errorf("Duplicate points: got %v, want [0 1 2]", seconds(points))
	}
}

func TestAssignTimestampsInvalidSpeed(t *testing.T) {
	route := northLine(NewGeoPoint(0, 0), 10)

	for _, speed := range []float64{0, -1} {
		_, err := AssignTimestamps(route, speed, testStart)
		if !errors.Is(err, ErrInvalidParameter) || !errors.Is(err, ErrInvalidSpeed) {
			t.Errorf("AssignTimestamps(speed=%v) error = %v, want invalid speed", speed, err)
		}
	}
}

func TestElapsed(t *testing.T) {
	points, _ := AssignTimestamps(northLine(NewGeoPoint(0, 0), 50, 50), 10, testStart)
	if got := Elapsed(points); got != 10*time.Second {
		t.Errorf("Elapsed() = %v, want 10s", got)
	}
	if got := Elapsed(points[:1]); got != 0 {
		t.Errorf("Elapsed() of one point = %v, want 0", got)
	}
}
