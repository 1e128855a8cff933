package parse

import (
	"os"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"

	"github.com/tormoder/fit"
)

// FIT parses Garmin's binary Flexible and Interoperable Data Transfer
// format via tormoder/fit.
type FIT struct{}

// FIT stores coordinates as signed 32-bit semicircles.
const semicirclesToDeg = 180.0 / 2147483648.0 // 2^31

func (FIT) TrackPath(path string) (geo.LineString, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fd, err := fit.Decode(f)
	if err != nil {
		return nil, err
	}
	act, err := fd.Activity()
	if err != nil {
		return nil, err
	}

	var line geo.LineString
	for _, rec := range act.Records {
		// Records without a fix carry invalid sentinels; skip, not fatal.
		if rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			continue
		}
		lng := float64(rec.PositionLong.Semicircles()) * semicirclesToDeg
		lat := float64(rec.PositionLat.Semicircles()) * semicirclesToDeg
		line = append(line, geo.Point{geo.Round5(lng), geo.Round5(lat)})
	}

	if len(line) < geo.MinLinePoints {
		return nil, ErrNoCoordinates
	}
	return line, nil
}

// TrackDate prefers the file creation time, then the session start,
// then the first record timestamp.
func (FIT) TrackDate(path string) time.Time {
	f, err := os.Open(path)
	if err != nil {
		return time.Now().UTC()
	}
	defer f.Close()

	fd, err := fit.Decode(f)
	if err != nil {
		return time.Now().UTC()
	}

	if ts := fd.FileId.TimeCreated; !ts.IsZero() {
		return ts.UTC()
	}

	act, err := fd.Activity()
	if err != nil {
		return time.Now().UTC()
	}
	for _, s := range act.Sessions {
		if !s.StartTime.IsZero() {
			return s.StartTime.UTC()
		}
	}
	for _, rec := range act.Records {
		if !rec.Timestamp.IsZero() {
			return rec.Timestamp.UTC()
		}
	}
	return time.Now().UTC()
}
