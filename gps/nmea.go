package gps

import (
	"fmt"
	"io"
	"math"
)

// fix is one output position with the motion derived from its neighbours
type fix struct {
	TimedPoint
	speedKnots float64
	course     float64
	satellites int
}

// calculateChecksum calculates the NMEA checksum for a sentence
func calculateChecksum(sentence string) string {
	var checksum byte
	for i := 1; i < len(sentence); i++ { // Skip the '$' character
		checksum ^= sentence[i]
	}
	return fmt.Sprintf("%02X", checksum)
}

// formatNMEA formats a complete NMEA sentence with checksum
func formatNMEA(sentence string) string {
	checksum := calculateChecksum(sentence)
	return fmt.Sprintf("%s*%s\r\n", sentence, checksum)
}

// nmeaCoordinates converts decimal degrees to DDMM.MMMM / DDDMM.MMMM fields
func nmeaCoordinates(lat, lon float64) string {
	latDeg, latMin := degreesMinutes(lat)
	latHem := "N"
	if lat < 0 {
		latHem = "S"
	}

	lonDeg, lonMin := degreesMinutes(lon)
	lonHem := "E"
	if lon < 0 {
		lonHem = "W"
	}

	return fmt.Sprintf("%02d%07.4f,%s,%03d%07.4f,%s", latDeg, latMin, latHem, lonDeg, lonMin, lonHem)
}

// degreesMinutes splits |v| into whole degrees and minutes rounded to 4
// decimals. Minutes that round up to 60 carry into the degrees.
func degreesMinutes(v float64) (int, float64) {
	abs := math.Abs(v)
	deg := int(abs)
	minutes := math.Round((abs-float64(deg))*60*1e4) / 1e4
	if minutes >= 60 {
		minutes -= 60
		deg++
	}
	return deg, minutes
}

// fixes derives speed over ground and course for each point from the segment
// to the next point. The last point reuses the motion of the segment before it.
func fixes(points []TimedPoint, satellites int) []fix {
	out := make([]fix, len(points))
	for i, p := range points {
		out[i] = fix{TimedPoint: p, satellites: satellites}

		from, to := i, i+1
		if to >= len(points) {
			from, to = i-1, i
		}
		if from < 0 {
			continue
		}

		a, b := points[from], points[to]
		if dt := b.Time.Sub(a.Time).Seconds(); dt > 0 {
			out[i].speedKnots = Distance(a.GeoPoint, b.GeoPoint) / dt * mpsToKnots
		}
		if Distance(a.GeoPoint, b.GeoPoint) > 0 {
			out[i].course = Bearing(a.GeoPoint, b.GeoPoint)
		}
	}
	return out
}

// generateGGA generates a GGA (Global Positioning System Fix Data) sentence
func (f fix) generateGGA() string {
	timeStr := f.Time.UTC().Format("150405") // HHMMSS

	altitude, altUnit := "", ""
	if f.HasElevation {
		altitude, altUnit = fmt.Sprintf("%.1f", f.Elevation), "M"
	}

	sentence := fmt.Sprintf("$GPGGA,%s,%s,1,%02d,1.2,%s,%s,0.0,M,,",
		timeStr,
		nmeaCoordinates(f.Lat, f.Lon),
		f.satellites,
		altitude, altUnit)

	return formatNMEA(sentence)
}

// generateRMC generates an RMC (Recommended Minimum) sentence
func (f fix) generateRMC() string {
	timeStr := f.Time.UTC().Format("150405") // HHMMSS
	dateStr := f.Time.UTC().Format("020106") // DDMMYY

	sentence := fmt.Sprintf("$GPRMC,%s,A,%s,%.1f,%.1f,%s,,,A",
		timeStr,
		nmeaCoordinates(f.Lat, f.Lon),
		f.speedKnots, f.course,
		dateStr)

	return formatNMEA(sentence)
}

// generateGLL generates a GLL (Geographic Position - Latitude/Longitude) sentence
func (f fix) generateGLL() string {
	timeStr := f.Time.UTC().Format("150405") + ".00"

	sentence := fmt.Sprintf("$GPGLL,%s,%s,A,A", nmeaCoordinates(f.Lat, f.Lon), timeStr)
	return formatNMEA(sentence)
}

// generateVTG generates a VTG (Track Made Good and Ground Speed) sentence
func (f fix) generateVTG() string {
	// 1 knot = 1.852 km/h; magnetic course is left empty
	sentence := fmt.Sprintf("$GPVTG,%.1f,T,,M,%.1f,N,%.1f,K,A",
		f.course, f.speedKnots, f.speedKnots*1.852)
	return formatNMEA(sentence)
}

// generateZDA generates a ZDA (UTC Date and Time) sentence
func (f fix) generateZDA() string {
	utcTime := f.Time.UTC()
	sentence := fmt.Sprintf("$GPZDA,%s.00,%02d,%02d,%04d,00,00",
		utcTime.Format("150405"), utcTime.Day(), int(utcTime.Month()), utcTime.Year())
	return formatNMEA(sentence)
}

func (f fix) sentences() []string {
	return []string{
		f.generateGGA(),
		f.generateRMC(),
		f.generateGLL(),
		f.generateVTG(),
		f.generateZDA(),
	}
}

// NMEASentences returns the NMEA 0183 sentence group (GGA, RMC, GLL, VTG, ZDA)
// for every point of a timed track.
func NMEASentences(points []TimedPoint, satellites int) [][]string {
	groups := make([][]string, len(points))
	for i, f := range fixes(points, satellites) {
		groups[i] = f.sentences()
	}
	return groups
}

// WriteNMEA writes the sentences for every point back to back
func WriteNMEA(w io.Writer, points []TimedPoint, satellites int) error {
	for _, group := range NMEASentences(points, satellites) {
		for _, sentence := range group {
			if _, err := io.WriteString(w, sentence); err != nil {
				return fmt.Errorf("failed to write NMEA sentence: %w", err)
			}
		}
	}
	return nil
}
