package gps

import (
	"math"
	"time"
)

// GeoPoint is a single geographic position. Elevation is only meaningful
// when HasElevation is set.
type GeoPoint struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Elevation    float64 `json:"elevation,omitempty"`
	HasElevation bool    `json:"has_elevation"`
}

// NewGeoPoint returns a point without elevation
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon}
}

// WithElevation returns a copy of p carrying the given elevation
func (p GeoPoint) WithElevation(elevation float64) GeoPoint {
	p.Elevation = elevation
	p.HasElevation = true
	return p
}

// TimedPoint is a GeoPoint annotated with a whole-second timestamp.
// Second is the offset from the track start; Time is start + Second.
type TimedPoint struct {
	GeoPoint
	Second int64     `json:"second"`
	Time   time.Time `json:"time"`
}

// Route is an ordered sequence of points in traversal order
type Route []GeoPoint

// First returns the first point of the route
func (r Route) First() GeoPoint {
	return r[0]
}

// Last returns the last point of the route
func (r Route) Last() GeoPoint {
	return r[len(r)-1]
}

// Length returns the total haversine length of the route in meters
func (r Route) Length() float64 {
	var total float64
	for i := 1; i < len(r); i++ {
		total += Distance(r[i-1], r[i])
	}
	return total
}

func (r Route) clone() Route {
	out := make(Route, len(r))
	copy(out, r)
	return out
}

// SpacingBucket counts consecutive-pair gaps in [Lower, Upper) meters.
// The last bucket has Upper = +Inf.
type SpacingBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Label returns a short human-readable range such as "5-15m"
func (b SpacingBucket) Label() string {
	switch {
	case b.Lower == 0:
		return "< " + formatMeters(b.Upper)
	case math.IsInf(b.Upper, 1):
		return "> " + formatMeters(b.Lower)
	default:
		return trimMeters(b.Lower) + "-" + formatMeters(b.Upper)
	}
}

// SpacingReport summarises the distances between consecutive route points
type SpacingReport struct {
	Points    int             `json:"points"`
	Segments  int             `json:"segments"`
	Total     float64         `json:"total_m"`
	Average   float64         `json:"average_m"`
	Min       float64         `json:"min_m"`
	Max       float64         `json:"max_m"`
	Median    float64         `json:"median_m"`
	Histogram []SpacingBucket `json:"histogram"`
}

// TotalKilometers returns the route length in kilometers
func (r SpacingReport) TotalKilometers() float64 {
	return r.Total / 1000
}

// TotalMiles returns the route length in statute miles
func (r SpacingReport) TotalMiles() float64 {
	return r.Total / metersPerMile
}

// TravelTime returns how long the route takes at a constant speed
func (r SpacingReport) TravelTime(speedMPS float64) time.Duration {
	if speedMPS <= 0 {
		return 0
	}
	return time.Duration(r.Total / speedMPS * float64(time.Second))
}
