package gps

import "math"

// spacingTolerance is the relative slack Densify allows above maxSpacing.
// Gaps within it are left alone and every inserted piece is kept within it.
const spacingTolerance = 1e-3

// segmentNoise absorbs rounding noise when a gap is an exact multiple of maxSpacing
const segmentNoise = 1e-6

// Simplify drops near-duplicate points. It scans forward keeping an interior
// point only when it lies at least minSpacing from the last kept point, so a
// run of sub-threshold steps collapses cumulatively. The first and last points
// are always kept. Routes with fewer than 3 points are returned unchanged.
func Simplify(route Route, minSpacing float64) Route {
	if len(route) < 3 {
		return route.clone()
	}

	result := make(Route, 0, len(route))
	result = append(result, route[0])

	for i := 1; i < len(route)-1; i++ {
		if Distance(result[len(result)-1], route[i]) >= minSpacing {
			result = append(result, route[i])
		}
	}

	return append(result, route[len(route)-1])
}

// Thin keeps every len/maxPoints-th point starting with the first, plus the
// last point. A non-positive maxPoints, or a route already within the limit,
// is returned unchanged. Because the last point is always kept the result may
// exceed maxPoints by one.
func Thin(route Route, maxPoints int) Route {
	if maxPoints <= 0 || len(route) <= maxPoints {
		return route.clone()
	}

	step := len(route) / maxPoints
	result := make(Route, 0, len(route)/step+1)
	for i := 0; i < len(route); i += step {
		result = append(result, route[i])
	}
	if (len(route)-1)%step != 0 {
		result = append(result, route[len(route)-1])
	}
	return result
}

// Densify inserts linearly interpolated points so that no consecutive gap
// exceeds maxSpacing. A gap of d meters becomes ceil(d/maxSpacing) equal
// fractions, or more when linear lat/lon steps along a long gap come out
// uneven in haversine length. Original points are all kept in order; only new
// points are added, and a second pass over the result inserts nothing.
func Densify(route Route, maxSpacing float64) (Route, error) {
	if maxSpacing <= 0 || math.IsNaN(maxSpacing) {
		return nil, invalidParameter(ErrInvalidSpacing, maxSpacing)
	}
	if len(route) < 2 {
		return route.clone(), nil
	}

	limit := maxSpacing * (1 + spacingTolerance)
	dense := make(Route, 0, len(route))
	dense = append(dense, route[0])

	for i := 1; i < len(route); i++ {
		p1, p2 := route[i-1], route[i]

		if dist := Distance(p1, p2); dist > limit {
			segments := splitCount(p1, p2, dist, maxSpacing, limit)
			for j := 1; j < segments; j++ {
				dense = append(dense, Interpolate(p1, p2, float64(j)/float64(segments)))
			}
		}

		dense = append(dense, p2)
	}

	return dense, nil
}

// splitCount returns how many equal fractions the gap p1-p2 needs so that
// every piece is at most limit meters.
func splitCount(p1, p2 GeoPoint, dist, maxSpacing, limit float64) int {
	segments := int(math.Ceil(dist/maxSpacing - segmentNoise))
	for {
		longest := longestPiece(p1, p2, segments)
		if longest <= limit {
			return segments
		}
		grown := int(math.Ceil(float64(segments) * longest / maxSpacing))
		if grown <= segments {
			grown = segments + 1
		}
		segments = grown
	}
}

// longestPiece is the longest haversine step when p1-p2 is cut into segments fractions
func longestPiece(p1, p2 GeoPoint, segments int) float64 {
	var longest float64
	prev := p1
	for j := 1; j <= segments; j++ {
		next := p2
		if j < segments {
			next = Interpolate(p1, p2, float64(j)/float64(segments))
		}
		longest = math.Max(longest, Distance(prev, next))
		prev = next
	}
	return longest
}
