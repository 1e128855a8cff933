package track

import (
	"time"

	"github.com/nezinomas/maps/internal/activity"
	"github.com/nezinomas/maps/internal/shared/geo"
)

// Track is one recorded cycling activity. Title carries the external
// activity id and is the natural key within a trip. Path may be empty:
// a track without geometry is valid, geometry is populated lazily.
type Track struct {
	ID           string         `json:"id"`
	TripID       string         `json:"trip_id"`
	Title        string         `json:"title"`
	Date         time.Time      `json:"date"`
	ActivityType string         `json:"activity_type"`
	Path         geo.LineString `json:"path,omitempty"`
}

// Stat binds a normalized statistic to its track, one to one.
type Stat struct {
	TrackID string `json:"track_id"`
	activity.Statistic
}

// WithStats is the map view's read model: a track joined with its
// statistic when one exists.
type WithStats struct {
	Track
	Stats *activity.Statistic `json:"stats,omitempty"`
}
