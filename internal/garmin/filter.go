package garmin

import (
	"strings"
	"time"

	"github.com/nezinomas/maps/internal/activity"
	"github.com/nezinomas/maps/internal/trip"
)

const startTimeLayout = "2006-01-02 15:04:05"

// Eligible decides whether one fetched activity belongs to the trip.
// The type key must mention biking or cycling. The date window check is
// skipped when the caller already scoped the listing to an explicit
// range; otherwise the start time must fall inside the trip's
// midnight-UTC window. A missing or malformed start time rejects the
// activity.
func Eligible(s activity.Summary, tr trip.Trip, explicitRange bool) bool {
	key := strings.ToLower(s.TypeKey())
	if !strings.Contains(key, "biking") && !strings.Contains(key, "cycling") {
		return false
	}
	if explicitRange {
		return true
	}

	ts, err := time.ParseInLocation(startTimeLayout, s.StartTimeGMT(), time.UTC)
	if err != nil {
		return false
	}
	start, end := tr.WindowUTC()
	return !ts.Before(start) && !ts.After(end)
}
