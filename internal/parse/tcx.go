package parse

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"
)

// TCX parses Training Center XML files. Trackpoints are decoded one
// element at a time so a long ride never pulls the whole document into
// memory.
type TCX struct{}

type tcxTrackpoint struct {
	Position *struct {
		Lat *float64 `xml:"LatitudeDegrees"`
		Lng *float64 `xml:"LongitudeDegrees"`
	} `xml:"Position"`
}

func (TCX) TrackPath(path string) (geo.LineString, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var line geo.LineString
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Trackpoint" {
			continue
		}

		// DecodeElement consumes the subtree, so nothing of the
		// trackpoint outlives this iteration.
		var tp tcxTrackpoint
		if err := dec.DecodeElement(&tp, &se); err != nil {
			return nil, err
		}
		if tp.Position == nil || tp.Position.Lat == nil || tp.Position.Lng == nil {
			continue
		}
		line = append(line, geo.Point{
			geo.Round5(*tp.Position.Lng),
			geo.Round5(*tp.Position.Lat),
		})
	}

	if len(line) < geo.MinLinePoints {
		return nil, ErrNoCoordinates
	}
	return line, nil
}

// TrackDate reads the Activity Id element, an ISO-8601 timestamp.
func (TCX) TrackDate(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Now().UTC()
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	inActivity := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return time.Now().UTC()
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local == "Activity" {
			inActivity = true
			continue
		}
		if !inActivity || se.Name.Local != "Id" {
			continue
		}

		var raw string
		if err := dec.DecodeElement(&raw, &se); err != nil {
			return time.Now().UTC()
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Now().UTC()
		}
		return ts.UTC()
	}
}
