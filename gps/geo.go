package gps

import "math"

// EarthRadius is the mean Earth radius in meters used by every distance calculation
const EarthRadius = 6371000.0

// Distance calculates the great-circle distance in meters between two points
// using the Haversine formula. Elevation is ignored.
func Distance(a, b GeoPoint) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// Interpolate returns the point at fraction (0..1) of the way from a to b.
// Latitude and longitude are interpolated linearly, which is close enough to
// the geodesic at the sub-100m scale this is used for. Elevation is only
// interpolated when both ends carry one; otherwise a's elevation is kept.
func Interpolate(a, b GeoPoint, fraction float64) GeoPoint {
	p := GeoPoint{
		Lat:          a.Lat + (b.Lat-a.Lat)*fraction,
		Lon:          a.Lon + (b.Lon-a.Lon)*fraction,
		Elevation:    a.Elevation,
		HasElevation: a.HasElevation,
	}
	if a.HasElevation && b.HasElevation {
		p.Elevation = a.Elevation + (b.Elevation-a.Elevation)*fraction
	}
	return p
}

// Bearing calculates the initial bearing from a to b in degrees (0-359.9)
func Bearing(a, b GeoPoint) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLonRad := (b.Lon - a.Lon) * math.Pi / 180

	y := math.Sin(deltaLonRad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLonRad)

	bearing := math.Atan2(y, x) * 180 / math.Pi

	// Normalize to 0-359 degrees
	if bearing < 0 {
		bearing += 360
	}

	return bearing
}
