package track

import (
	"context"
	"fmt"
	"time"

	"github.com/nezinomas/maps/internal/activity"
	"github.com/nezinomas/maps/internal/artifacts"
	"github.com/nezinomas/maps/internal/parse"
	"github.com/nezinomas/maps/internal/shared/geo"
	"github.com/nezinomas/maps/internal/trip"

	"github.com/google/uuid"
)

// SyncData is the reconciler's view of one trip, computed once per
// run: which activity ids the database knows about and which have a
// trackpoint file on disk.
type SyncData struct {
	Trip   trip.Trip
	InDB   map[string]string // title -> primary key
	OnDisk []string
}

func NewSyncData(ctx context.Context, repo *Repo, tr trip.Trip, store *artifacts.Store) (SyncData, error) {
	ids, err := repo.TitleIDMap(ctx, tr.ID)
	if err != nil {
		return SyncData{}, err
	}
	return SyncData{Trip: tr, InDB: ids, OnDisk: store.Stems(tr.ID)}, nil
}

// Syncer converges database rows with the on-disk artifact set for one
// trip. Disk is the source of truth for which activities exist; the
// database for which are fully ingested.
type Syncer struct {
	data  SyncData
	repo  *Repo
	store *artifacts.Store
}

func NewSyncer(repo *Repo, store *artifacts.Store, data SyncData) *Syncer {
	return &Syncer{data: data, repo: repo, store: store}
}

const syncedMsg = "Successfully created or updated tracks and statistics"

// Create ingests only the activities that are on disk but not yet in
// the database. Returns a status message and the number of new tracks.
func (s *Syncer) Create(ctx context.Context) (string, int) {
	return s.sync(ctx, s.newOnDisk())
}

// CreateOrUpdate re-ingests every known activity, database or disk.
// Meant for a full resync after the caller wiped the trip's rows.
func (s *Syncer) CreateOrUpdate(ctx context.Context) (string, int) {
	return s.sync(ctx, s.unionSet())
}

func (s *Syncer) newOnDisk() []string {
	var titles []string
	for _, stem := range s.data.OnDisk {
		if _, ok := s.data.InDB[stem]; !ok {
			titles = append(titles, stem)
		}
	}
	return titles
}

func (s *Syncer) unionSet() []string {
	seen := map[string]bool{}
	var titles []string
	for _, stem := range s.data.OnDisk {
		seen[stem] = true
		titles = append(titles, stem)
	}
	for title := range s.data.InDB {
		if !seen[title] {
			titles = append(titles, title)
		}
	}
	return titles
}

func (s *Syncer) sync(ctx context.Context, titles []string) (string, int) {
	created := 0
	for _, title := range titles {
		if _, ok := s.data.InDB[title]; !ok {
			created++
		}
	}

	tracks, err := s.buildTracks(titles)
	if err != nil {
		return fmt.Sprintf("Error occurred during saving tracks: %v", err), 0
	}

	if err := s.repo.BulkUpsertTracks(ctx, tracks); err != nil {
		return fmt.Sprintf("Error occurred during saving tracks: %v", err), 0
	}

	// Tracks are already committed at this point; a statistic failure
	// leaves them in place (a track without a statistic is valid).
	if err := s.repo.BulkUpsertStatistics(ctx, s.buildStats(tracks)); err != nil {
		return fmt.Sprintf("Error occurred during saving statistic: %v", err), created
	}

	return syncedMsg, created
}

// parseTrackFile is a seam for tests; building real FIT fixtures is
// not worth the trouble.
var parseTrackFile = func(path string) (geo.LineString, time.Time, error) {
	p, err := parse.ForFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	line, err := p.TrackPath(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	return line, p.TrackDate(path), nil
}

func (s *Syncer) buildTracks(titles []string) ([]Track, error) {
	var tracks []Track
	for _, title := range titles {
		path := s.store.FitPath(s.data.Trip.ID, title)

		line, date, err := parseTrackFile(path)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", title, err)
		}

		t := Track{
			ID:           uuid.NewString(),
			TripID:       s.data.Trip.ID,
			Title:        title,
			Date:         date,
			ActivityType: "cycling",
			Path:         line,
		}
		// Reuse the primary key so known titles update in place.
		if id, ok := s.data.InDB[title]; ok {
			t.ID = id
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// buildStats derives statistics from the stored summary snapshots.
// An activity without a usable snapshot simply has no statistic row.
func (s *Syncer) buildStats(tracks []Track) []Stat {
	var stats []Stat
	for _, t := range tracks {
		snapshot := s.store.ReadSnapshot(s.data.Trip.ID, t.Title)
		if snapshot == nil {
			continue
		}
		st, err := activity.Extract(snapshot)
		if err != nil {
			continue
		}
		stats = append(stats, Stat{TrackID: t.ID, Statistic: st})
	}
	return stats
}
