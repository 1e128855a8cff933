package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/nezinomas/maps/internal/activity"
)

// Store keeps the raw activity artifacts for every trip on disk under
// {root}/tracks/{tripID}/. Each activity leaves two files behind: the
// trackpoint file {activityID}.fit and an extensionless JSON snapshot
// of the API record. The snapshot doubles as the idempotency
// checkpoint: once it exists the activity is never fetched again.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) tripDir(tripID string) string {
	return filepath.Join(s.root, "tracks", tripID)
}

// EnsureTripDir creates the trip's artifact directory on demand.
func (s *Store) EnsureTripDir(tripID string) error {
	return os.MkdirAll(s.tripDir(tripID), 0o755)
}

// HasSnapshot reports whether the activity was already fetched.
func (s *Store) HasSnapshot(tripID, activityID string) bool {
	_, err := os.Stat(s.SnapshotPath(tripID, activityID))
	return err == nil
}

// WriteActivity stores the trackpoint file and then the snapshot. The
// snapshot goes last so a failed write never leaves a checkpoint
// behind without its data. An empty trackpoint payload (the upstream
// had no file for this activity) writes the snapshot alone.
func (s *Store) WriteActivity(tripID, activityID string, summary activity.Summary, trackData []byte) error {
	if err := s.EnsureTripDir(tripID); err != nil {
		return err
	}

	if len(trackData) > 0 {
		if err := os.WriteFile(s.FitPath(tripID, activityID), trackData, 0o644); err != nil {
			return err
		}
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return os.WriteFile(s.SnapshotPath(tripID, activityID), raw, 0o644)
}

// Stems lists the activity ids that have a trackpoint file on disk.
func (s *Store) Stems(tripID string) []string {
	entries, err := os.ReadDir(s.tripDir(tripID))
	if err != nil {
		return nil
	}

	var stems []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".fit") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return stems
}

// ReadSnapshot returns the stored API record for one activity, or nil
// when there is no usable snapshot. A missing or corrupt file is "no
// data", not an error.
func (s *Store) ReadSnapshot(tripID, activityID string) activity.Summary {
	raw, err := os.ReadFile(s.SnapshotPath(tripID, activityID))
	if err != nil {
		return nil
	}

	var summary activity.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return summary
}

func (s *Store) FitPath(tripID, activityID string) string {
	return filepath.Join(s.tripDir(tripID), activityID+".fit")
}

func (s *Store) SnapshotPath(tripID, activityID string) string {
	return filepath.Join(s.tripDir(tripID), activityID)
}
