package gps

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomRoute walks n steps of 0-300m in random directions from a fixed origin
func randomRoute(rng *rand.Rand, n int) Route {
	route := Route{NewGeoPoint(37.7749, -122.4194).WithElevation(20)}
	for i := 1; i < n; i++ {
		prev := route[len(route)-1]
		step := rng.Float64() * 300
		angle := rng.Float64() * 2 * math.Pi
		next := eastOf(northOf(prev, step*math.Cos(angle)), step*math.Sin(angle))
		if rng.Intn(4) > 0 {
			next = next.WithElevation(prev.Elevation + rng.Float64()*10 - 5)
		} else {
			next.HasElevation, next.Elevation = false, 0
		}
		route = append(route, next)
	}
	return route
}

func TestSimplifyDropsNearDuplicate(t *testing.T) {
	p1 := NewGeoPoint(51.5, -0.12)
	p2 := northOf(p1, 0.5)
	p3 := northOf(p2, 10)

	got := Simplify(Route{p1, p2, p3}, 1.0)

	assert.Equal(t, Route{p1, p3}, got)
}

func TestSimplifyComparesAgainstLastKept(t *testing.T) {
	// 0.6m steps: 0.6 and 1.8 are each < 1m from the last kept point, 1.2 is not
	route := northLine(NewGeoPoint(0, 0), 0.6, 0.6, 0.6, 18.2)

	got := Simplify(route, 1.0)

	assert.Equal(t, Route{route[0], route[2], route[4]}, got)
}

func TestSimplifyAlwaysKeepsLast(t *testing.T) {
	route := northLine(NewGeoPoint(0, 0), 5, 0.1)

	got := Simplify(route, 1.0)

	assert.Equal(t, route, got)
}

func TestSimplifyShortRoutesPassThrough(t *testing.T) {
	origin := NewGeoPoint(45, 7)
	route := Route{origin, origin}

	got := Simplify(route, 100)
	require.Equal(t, route, got)

	got[0] = NewGeoPoint(0, 0)
	assert.Equal(t, origin, route[0], "Simplify must not return the caller's slice")
}

func TestSimplifyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		route := randomRoute(rng, 3+rng.Intn(60))
		before := route.clone()
		minSpacing := rng.Float64() * 200

		got := Simplify(route, minSpacing)

		require.Equal(t, before, route, "input mutated")
		assert.LessOrEqual(t, len(got), len(route))
		assert.Equal(t, route.First(), got.First())
		assert.Equal(t, route.Last(), got.Last())
		for j := 1; j < len(got)-1; j++ {
			assert.GreaterOrEqual(t, Distance(got[j-1], got[j]), minSpacing)
		}
	}
}

func TestThin(t *testing.T) {
	route := northLine(NewGeoPoint(0, 0), 10, 10, 10, 10, 10, 10, 10, 10, 10)
	require.Len(t, route, 10)

	tests := []struct {
		name      string
		maxPoints int
		want      []int
	}{
		{"Disabled", 0, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"Within limit", 10, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"Stride lands on last point", 3, []int{0, 3, 6, 9}},
		{"Last point appended", 4, []int{0, 2, 4, 6, 8, 9}},
		{"Single point requested", 1, []int{0, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make(Route, len(tt.want))
			for i, idx := range tt.want {
				want[i] = route[idx]
			}
			assert.Equal(t, want, Thin(route, tt.maxPoints))
		})
	}
}

func TestDensifyInsertsMidpoint(t *testing.T) {
	route := northLine(NewGeoPoint(37.7749, -122.4194), 100)

	got, err := Densify(route, 50)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, route[0], got[0])
	assert.Equal(t, route[1], got[2])
	assert.InDelta(t, 50, Distance(got[0], got[1]), 1e-6)
	assert.InDelta(t, 50, Distance(got[1], got[2]), 1e-6)
}

func TestDensifySegmentCount(t *testing.T) {
	tests := []struct {
		gap, maxSpacing float64
		wantPoints      int
	}{
		{30, 50, 2},
		{50, 50, 2},
		{100, 30, 5},  // ceil(3.33) = 4 segments
		{250, 10, 26}, // 25 segments
	}

	for _, tt := range tests {
		route := northLine(NewGeoPoint(-12, 130), tt.gap)
		got, err := Densify(route, tt.maxSpacing)
		require.NoError(t, err)
		assert.Len(t, got, tt.wantPoints, "gap %.0f with max spacing %.0f", tt.gap, tt.maxSpacing)
	}
}

func TestDensifyInterpolatesElevation(t *testing.T) {
	a := NewGeoPoint(0, 0).WithElevation(10)
	b := northOf(NewGeoPoint(0, 0), 40).WithElevation(50)

	got, err := Densify(Route{a, b}, 10)
	require.NoError(t, err)

	require.Len(t, got, 5)
	for i, p := range got {
		assert.True(t, p.HasElevation)
		assert.InDelta(t, 10+float64(i)*10, p.Elevation, 1e-9)
	}
}

func TestDensifyProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		route := randomRoute(rng, 2+rng.Intn(40))
		before := route.clone()
		maxSpacing := 5 + rng.Float64()*60

		got, err := Densify(route, maxSpacing)
		require.NoError(t, err)

		require.Equal(t, before, route, "input mutated")
		assert.GreaterOrEqual(t, len(got), len(route))
		assert.Equal(t, route.First(), got.First())
		assert.Equal(t, route.Last(), got.Last())

		for j := 1; j < len(got); j++ {
			assert.LessOrEqual(t, Distance(got[j-1], got[j]), maxSpacing*(1+spacingTolerance))
		}

		// original points survive in their original relative order
		k := 0
		for _, p := range got {
			if k < len(route) && p == route[k] {
				k++
			}
		}
		assert.Equal(t, len(route), k, "original points missing or reordered")

		again, err := Densify(got, maxSpacing)
		require.NoError(t, err)
		assert.Equal(t, got, again, "second pass must not insert points")
	}
}

func TestDensifyLongGaps(t *testing.T) {
	tests := []struct {
		name       string
		from, to   GeoPoint
		maxSpacing float64
	}{
		{"High latitude diagonal", NewGeoPoint(64.0, 10.0), NewGeoPoint(64.5, 11.0), 15.6},
		{"Mid latitude diagonal", NewGeoPoint(45.0, 7.0), NewGeoPoint(45.2, 7.3), 8},
		{"Mostly east-west", NewGeoPoint(60.0, -20.0), NewGeoPoint(60.05, -19.0), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := Route{tt.from, tt.to}

			got, err := Densify(route, tt.maxSpacing)
			require.NoError(t, err)

			assert.Equal(t, tt.from, got.First())
			assert.Equal(t, tt.to, got.Last())
			assert.GreaterOrEqual(t, len(got)-1, int(math.Ceil(Distance(tt.from, tt.to)/tt.maxSpacing)))

			worst := 0.0
			for j := 1; j < len(got); j++ {
				worst = math.Max(worst, Distance(got[j-1], got[j]))
			}
			assert.LessOrEqual(t, worst, tt.maxSpacing*(1+spacingTolerance))

			again, err := Densify(got, tt.maxSpacing)
			require.NoError(t, err)
			assert.Equal(t, len(got), len(again), "second pass must not insert points")
		})
	}
}

func TestDensifyInvalidSpacing(t *testing.T) {
	route := northLine(NewGeoPoint(0, 0), 100)

	for _, spacing := range []float64{0, -5, math.NaN()} {
		_, err := Densify(route, spacing)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))
		assert.True(t, errors.Is(err, ErrInvalidSpacing))
	}
}
