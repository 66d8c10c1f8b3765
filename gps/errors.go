package gps

import (
	"errors"
	"fmt"
)

// Common errors returned by the route pipeline
var (
	ErrSourceNotFound   = errors.New("source document not found")
	ErrMalformedPoint   = errors.New("malformed point")
	ErrEmptyRoute       = errors.New("route must contain at least 2 points")
	ErrInvalidParameter = errors.New("invalid parameter")

	ErrInvalidSpeed       = &InvalidParameterError{Name: "speed", Reason: "must be positive"}
	ErrInvalidSpacing     = &InvalidParameterError{Name: "spacing", Reason: "must be positive"}
	ErrInvalidMinSpacing  = &InvalidParameterError{Name: "min-spacing", Reason: "must be non-negative"}
	ErrInvalidMaxPoints   = &InvalidParameterError{Name: "max-points", Reason: "must be non-negative"}
	ErrInvalidReplaySpeed = &InvalidParameterError{Name: "replay-speed", Reason: "must be positive"}
	ErrInvalidSatellites  = &InvalidParameterError{Name: "satellites", Reason: "must be between 4 and 12"}
)

// SourceNotFoundError reports a missing input document
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("input file %s not found", e.Path)
}

func (e *SourceNotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}

// MalformedPointError identifies a point whose coordinates are missing or unusable
type MalformedPointError struct {
	Element string // trkpt or rtept
	Index   int    // 1-based position among elements of the same kind
	Line    int    // input line of the element's start tag
	Field   string // lat, lon or ele
	Value   string // raw attribute or element text
	Reason  string
}

func (e *MalformedPointError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("malformed %s #%d (line %d): %s %s", e.Element, e.Index, e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed %s #%d (line %d): %s %q %s", e.Element, e.Index, e.Line, e.Field, e.Value, e.Reason)
}

func (e *MalformedPointError) Is(target error) bool {
	return target == ErrMalformedPoint
}

// EmptyRouteError reports an input with fewer than 2 usable points
type EmptyRouteError struct {
	Path   string
	Points int
}

func (e *EmptyRouteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("only %d points found, need at least 2", e.Points)
	}
	return fmt.Sprintf("only %d points found in %s, need at least 2", e.Points, e.Path)
}

func (e *EmptyRouteError) Is(target error) bool {
	return target == ErrEmptyRoute
}

// InvalidParameterError reports an out-of-range processing parameter
type InvalidParameterError struct {
	Name   string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s %s, got %g", e.Name, e.Reason, e.Value)
}

// Is matches ErrInvalidParameter and any InvalidParameterError for the same parameter name
func (e *InvalidParameterError) Is(target error) bool {
	if target == ErrInvalidParameter {
		return true
	}
	if other, ok := target.(*InvalidParameterError); ok {
		return other.Name == e.Name
	}
	return false
}

func invalidParameter(template *InvalidParameterError, value float64) error {
	return &InvalidParameterError{Name: template.Name, Value: value, Reason: template.Reason}
}
