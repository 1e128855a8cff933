package garmin

import (
	"context"
	"fmt"
	"time"

	"github.com/nezinomas/maps/internal/activity"
	"github.com/nezinomas/maps/internal/artifacts"
	"github.com/nezinomas/maps/internal/trip"
)

// Status messages returned by GetData. The web and CLI layers show
// them to the user verbatim.
const (
	MsgNoTrip       = "No trip found"
	MsgCommError    = "Error occurred during Garmin Connect communication"
	MsgNothingToDo  = "Nothing to sync"
	MsgSyncedGarmin = "Successfully synced data from Garmin Connect"
)

const defaultListLimit = 15

// SyncService drives one fetch-and-store run for a trip: list the
// recent activities, filter them, and persist the raw artifacts for
// every eligible activity not yet on disk. Database reconciliation is
// a separate step run by the caller afterwards.
type SyncService struct {
	trip  *trip.Trip
	api   API
	store *artifacts.Store
	start time.Time
	end   time.Time
}

func NewSyncService(tr *trip.Trip, api API, store *artifacts.Store) *SyncService {
	return &SyncService{trip: tr, api: api, store: store}
}

// WithRange scopes the listing to an explicit date range instead of
// the trip's own window. Range-scoped listings skip the window filter.
func (s *SyncService) WithRange(start, end time.Time) *SyncService {
	s.start, s.end = start, end
	return s
}

func (s *SyncService) explicitRange() bool {
	return !s.start.IsZero() && !s.end.IsZero()
}

// GetData runs the fetch flow and returns human-readable status
// messages. It never returns an error: every failure mode folds into a
// message, and artifacts written before a failure stay on disk so the
// next run resumes where this one stopped.
func (s *SyncService) GetData(ctx context.Context) []string {
	if s.trip == nil {
		return []string{MsgNoTrip}
	}

	if err := s.api.Login(ctx); err != nil {
		return []string{MsgCommError}
	}

	// Listing failures are transport errors, not credential problems;
	// the cause travels with the message.
	summaries, err := s.listActivities(ctx)
	if err != nil {
		return []string{fmt.Sprintf("Error: %v", err)}
	}

	var eligible []int
	for i, sum := range summaries {
		if Eligible(sum, *s.trip, s.explicitRange()) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return []string{MsgNothingToDo}
	}

	for _, i := range eligible {
		sum := summaries[i]
		id := sum.ID()
		if id == "" {
			continue
		}
		// The snapshot is the idempotency checkpoint: once it exists
		// the activity is never downloaded again.
		if s.store.HasSnapshot(s.trip.ID, id) {
			continue
		}

		payload, err := s.api.DownloadOriginal(ctx, id)
		if err != nil {
			return []string{fmt.Sprintf("Error occurred during saving files: %v", err)}
		}
		if err := s.store.WriteActivity(s.trip.ID, id, sum, payload); err != nil {
			return []string{fmt.Sprintf("Error occurred during saving files: %v", err)}
		}
	}

	return []string{MsgSyncedGarmin}
}

func (s *SyncService) listActivities(ctx context.Context) ([]activity.Summary, error) {
	if s.explicitRange() {
		return s.api.ActivitiesByDate(ctx, s.start, s.end)
	}
	return s.api.Activities(ctx, 0, defaultListLimit)
}
