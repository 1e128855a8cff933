package mapview

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"
	"github.com/nezinomas/maps/internal/track"
	"github.com/nezinomas/maps/internal/trip"

	"github.com/redis/go-redis/v9"
)

// Cache lifetimes. An ongoing trip gets new tracks daily, so its
// rendering goes stale fast; a finished trip only changes on an
// explicit resync, which invalidates the key anyway.
const (
	ttlOngoing = time.Hour
	ttlPast    = 24 * time.Hour
)

// Service renders a trip's tracks as a GeoJSON FeatureCollection and
// caches the rendered document in redis. The cache client may be nil,
// in which case every call renders fresh.
type Service struct {
	tracks *track.Repo
	cache  *redis.Client
}

func NewService(tracks *track.Repo, cache *redis.Client) *Service {
	return &Service{tracks: tracks, cache: cache}
}

func cacheKey(tripID string) string {
	return "geojson_" + tripID
}

// GeoJSON returns the rendered FeatureCollection for the trip, from
// cache when possible.
func (s *Service) GeoJSON(ctx context.Context, tr trip.Trip) ([]byte, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey(tr.ID)).Bytes()
		if err == nil {
			return cached, nil
		}
	}

	withStats, err := s.tracks.WithStats(ctx, tr.ID)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(buildFeatureCollection(withStats))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := ttlPast
		if tr.Ongoing(time.Now().UTC()) {
			ttl = ttlOngoing
		}
		s.cache.Set(ctx, cacheKey(tr.ID), doc, ttl)
	}
	return doc, nil
}

// Invalidate drops the cached rendering, called after a sync that
// created new tracks.
func (s *Service) Invalidate(ctx context.Context, tripID string) {
	if s.cache != nil {
		s.cache.Del(ctx, cacheKey(tripID))
	}
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string         `json:"type"`
	Coordinates geo.LineString `json:"coordinates"`
}

func buildFeatureCollection(tracks []track.WithStats) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: []feature{}}
	for _, t := range tracks {
		if len(t.Path) < geo.MinLinePoints {
			continue
		}

		props := map[string]any{
			"title": t.Title,
			"date":  t.Date.Format("2006-01-02"),
		}
		if t.Stats != nil {
			props["total_km"] = round1(t.Stats.TotalKm)
			props["time"] = formatDuration(t.Stats.TotalTimeSeconds)
			if t.Stats.AvgSpeed != nil {
				props["avg_speed"] = round1(*t.Stats.AvgSpeed)
			}
			if t.Stats.Ascent != nil {
				props["ascent"] = math.Round(*t.Stats.Ascent)
			}
		}
		last := t.Path[len(t.Path)-1]
		props["last_point"] = []float64{last[1], last[0]} // lat, lng for the marker

		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   geometry{Type: "LineString", Coordinates: t.Path},
			Properties: props,
		})
	}
	return fc
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
