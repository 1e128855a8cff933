package parse

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"
)

// ErrNoCoordinates means the file held fewer than two coordinate pairs;
// a single point or an empty track cannot form a line.
var ErrNoCoordinates = errors.New("no valid coordinates")

// Parser extracts track geometry and a canonical start date from one
// raw activity file. One implementation per file format.
type Parser interface {
	// TrackPath returns the ordered lon/lat pairs, rounded to 5 decimals.
	TrackPath(path string) (geo.LineString, error)
	// TrackDate returns the activity start time in UTC. It never fails:
	// when the file holds no usable timestamp the current time is used.
	TrackDate(path string) time.Time
}

// ForFile picks a parser by file extension.
func ForFile(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tcx":
		return TCX{}, nil
	case ".fit":
		return FIT{}, nil
	default:
		return nil, fmt.Errorf("unsupported activity file: %s", filepath.Base(path))
	}
}
