package gps

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// GPX document constants for generated files
const (
	GPXNamespace = "http://www.topografix.com/GPX/1/1"
	GPXVersion   = "1.1"
	TimeLayout   = "2006-01-02T15:04:05Z"
)

// GPX represents the root GPX document structure
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Xmlns   string   `xml:"xmlns,attr"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Track   Track    `xml:"trk"`
}

// Track represents a GPX track
type Track struct {
	Name         string       `xml:"name"`
	TrackSegment TrackSegment `xml:"trkseg"`
}

// TrackSegment represents a segment of a GPX track
type TrackSegment struct {
	TrackPoints []TrackPoint `xml:"trkpt"`
}

// TrackPoint is a track point with its fields already formatted: 7 decimal
// places for coordinates, 1 for elevation and whole-second UTC time.
type TrackPoint struct {
	Lat       string `xml:"lat,attr"`
	Lon       string `xml:"lon,attr"`
	Elevation string `xml:"ele,omitempty"`
	Time      string `xml:"time"`
}

// GPXWriter accumulates timed points and writes them as a single-track GPX document
type GPXWriter struct {
	gpx *GPX
}

// NewGPXWriter creates a new GPX writer for a track with the given name
func NewGPXWriter(name, creator string) *GPXWriter {
	return &GPXWriter{
		gpx: &GPX{
			Xmlns:   GPXNamespace,
			Version: GPXVersion,
			Creator: creator,
			Track: Track{
				Name: name,
				TrackSegment: TrackSegment{
					TrackPoints: []TrackPoint{},
				},
			},
		},
	}
}

// AddTrackPoint appends a timed point to the track
func (w *GPXWriter) AddTrackPoint(p TimedPoint) {
	trackPoint := TrackPoint{
		Lat:  strconv.FormatFloat(p.Lat, 'f', 7, 64),
		Lon:  strconv.FormatFloat(p.Lon, 'f', 7, 64),
		Time: p.Time.UTC().Format(TimeLayout),
	}
	if p.HasElevation {
		trackPoint.Elevation = strconv.FormatFloat(p.Elevation, 'f', 1, 64)
	}

	w.gpx.Track.TrackSegment.TrackPoints = append(w.gpx.Track.TrackSegment.TrackPoints, trackPoint)
}

// AddTrackPoints appends every point in order
func (w *GPXWriter) AddTrackPoints(points []TimedPoint) {
	for _, p := range points {
		w.AddTrackPoint(p)
	}
}

// GetTrackPointCount returns the number of track points currently stored
func (w *GPXWriter) GetTrackPointCount() int {
	return len(w.gpx.Track.TrackSegment.TrackPoints)
}

// Encode writes the XML declaration and the indented GPX document to out
func (w *GPXWriter) Encode(out io.Writer) error {
	buf := bufio.NewWriter(out)

	if _, err := buf.WriteString(xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	encoder := xml.NewEncoder(buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(w.gpx); err != nil {
		return fmt.Errorf("failed to encode GPX data: %w", err)
	}
	if err := buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write GPX data: %w", err)
	}

	return buf.Flush()
}

// WriteToFile writes the document to filename. The data goes to a temporary
// file in the same directory which is renamed into place once complete, so a
// failed write never leaves a partial track behind.
func (w *GPXWriter) WriteToFile(filename string) (err error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create GPX file %s: %w", filename, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = w.Encode(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to move GPX file into place: %w", err)
	}
	return nil
}

// WriteTrackFile writes points as a named single-track GPX file
func WriteTrackFile(filename, name, creator string, points []TimedPoint) error {
	w := NewGPXWriter(name, creator)
	w.AddTrackPoints(points)
	return w.WriteToFile(filename)
}

// rawPoint is a trkpt or rtept exactly as it appears in the source document
type rawPoint struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Ele   *string    `xml:"ele"`
}

func (p rawPoint) attr(name string) (string, bool) {
	for _, a := range p.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

type sourcePoint struct {
	element string
	index   int
	line    int
	raw     rawPoint
}

// sourceDocument holds both point containers of a parsed GPX document,
// unconverted, in document order.
type sourceDocument struct {
	trackPoints []sourcePoint
	routePoints []sourcePoint
}

// extractors are tried in order; the first one yielding any points wins
var extractors = []func(*sourceDocument) (Route, error){
	(*sourceDocument).trackRoute,
	(*sourceDocument).waypointRoute,
}

// ParseRoute reads a GPX document and returns its points in traversal order.
// Track points (trk/trkseg/trkpt) are preferred; route points (rte/rtept) are
// used only when the document has no track points.
func ParseRoute(r io.Reader) (Route, error) {
	doc, err := decodeSource(r)
	if err != nil {
		return nil, err
	}

	var route Route
	for _, extract := range extractors {
		route, err = extract(doc)
		if err != nil {
			return nil, err
		}
		if len(route) > 0 {
			break
		}
	}

	if len(route) < 2 {
		return nil, &EmptyRouteError{Points: len(route)}
	}
	return route, nil
}

// ReadRouteFile reads and parses a GPX file, returning its route
func ReadRouteFile(filename string) (Route, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SourceNotFoundError{Path: filename}
		}
		return nil, fmt.Errorf("failed to open GPX file %s: %w", filename, err)
	}
	defer file.Close()

	route, err := ParseRoute(file)
	if err != nil {
		var empty *EmptyRouteError
		if errors.As(err, &empty) {
			empty.Path = filename
			return nil, empty
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return route, nil
}

func decodeSource(r io.Reader) (*sourceDocument, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	doc := &sourceDocument{}
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse GPX document: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || (start.Name.Local != "trkpt" && start.Name.Local != "rtept") {
			continue
		}

		line, _ := decoder.InputPos()
		var raw rawPoint
		if err := decoder.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("failed to parse %s at line %d: %w", start.Name.Local, line, err)
		}

		if start.Name.Local == "trkpt" {
			doc.trackPoints = append(doc.trackPoints, sourcePoint{"trkpt", len(doc.trackPoints) + 1, line, raw})
		} else {
			doc.routePoints = append(doc.routePoints, sourcePoint{"rtept", len(doc.routePoints) + 1, line, raw})
		}
	}
}

func (d *sourceDocument) trackRoute() (Route, error) {
	return convertPoints(d.trackPoints)
}

func (d *sourceDocument) waypointRoute() (Route, error) {
	return convertPoints(d.routePoints)
}

func convertPoints(points []sourcePoint) (Route, error) {
	route := make(Route, 0, len(points))
	for _, sp := range points {
		p, err := sp.geoPoint()
		if err != nil {
			return nil, err
		}
		route = append(route, p)
	}
	return route, nil
}

func (sp sourcePoint) geoPoint() (GeoPoint, error) {
	lat, err := sp.coordinate("lat", 90)
	if err != nil {
		return GeoPoint{}, err
	}
	lon, err := sp.coordinate("lon", 180)
	if err != nil {
		return GeoPoint{}, err
	}

	p := NewGeoPoint(lat, lon)
	if sp.raw.Ele == nil {
		return p, nil
	}

	ele, err := parseFinite(*sp.raw.Ele)
	if err != nil {
		return GeoPoint{}, sp.malformed("ele", *sp.raw.Ele, "is not a number")
	}
	return p.WithElevation(ele), nil
}

func (sp sourcePoint) coordinate(name string, limit float64) (float64, error) {
	value, ok := sp.raw.attr(name)
	if !ok {
		return 0, sp.malformed(name, "", "is missing")
	}
	v, err := parseFinite(value)
	if err != nil {
		return 0, sp.malformed(name, value, "is not a number")
	}
	if math.Abs(v) > limit {
		return 0, sp.malformed(name, value, fmt.Sprintf("is outside ±%g", limit))
	}
	return v, nil
}

func (sp sourcePoint) malformed(field, value, reason string) error {
	return &MalformedPointError{
		Element: sp.element,
		Index:   sp.index,
		Line:    sp.line,
		Field:   field,
		Value:   value,
		Reason:  reason,
	}
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
