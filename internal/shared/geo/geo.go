package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a single coordinate pair, longitude first (WGS84).
type Point [2]float64

func (p Point) Lng() float64 { return p[0] }
func (p Point) Lat() float64 { return p[1] }

// LineString is an ordered sequence of points. A usable track line
// needs at least MinLinePoints of them.
type LineString []Point

const MinLinePoints = 2

// WKT renders the line as well-known text for PostGIS.
func (l LineString) WKT() string {
	if len(l) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("LINESTRING(")
	for i, p := range l {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(p[0], 'f', -1, 64))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(p[1], 'f', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// ParseLineStringWKT parses the output of ST_AsText back into a LineString.
func ParseLineStringWKT(s string) (LineString, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "LINESTRING(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("not a linestring: %q", s)
	}

	body := s[len("LINESTRING(") : len(s)-1]
	pairs := strings.Split(body, ",")
	line := make(LineString, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) != 2 {
			return nil, fmt.Errorf("bad coordinate pair: %q", pair)
		}
		lng, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		line = append(line, Point{lng, lat})
	}
	return line, nil
}

// Round5 rounds a coordinate to 5 decimal places, roughly 1 m precision.
func Round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
