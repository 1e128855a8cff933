package track

import (
	"context"
	"fmt"
	"strings"

	"github.com/nezinomas/maps/internal/activity"
	"github.com/nezinomas/maps/internal/db"
	"github.com/nezinomas/maps/internal/shared/geo"
)

type Repo struct {
	db db.Querier
}

func NewRepo(db db.Querier) *Repo {
	return &Repo{db: db}
}

// TitleIDMap returns title -> primary key for every track of the trip.
func (r *Repo) TitleIDMap(ctx context.Context, tripID string) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT title, id FROM tracks WHERE trip_id=$1
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[string]string{}
	for rows.Next() {
		var title, id string
		if err := rows.Scan(&title, &id); err != nil {
			return nil, err
		}
		ids[title] = id
	}
	return ids, nil
}

// BulkUpsertTracks writes all tracks in one statement so the batch is
// atomic: existing rows (matched on primary key) get a fresh date and
// path, new rows are inserted.
func (r *Repo) BulkUpsertTracks(ctx context.Context, tracks []Track) error {
	if len(tracks) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(tracks)*6)
	sb.WriteString(`INSERT INTO tracks (id, trip_id, title, date, activity_type, path) VALUES `)
	for i, t := range tracks {
		if i > 0 {
			sb.WriteByte(',')
		}
		n := i * 6
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d, ST_GeomFromText($%d, 4326))", n+1, n+2, n+3, n+4, n+5, n+6)

		var wkt any
		if len(t.Path) >= geo.MinLinePoints {
			wkt = t.Path.WKT()
		}
		args = append(args, t.ID, t.TripID, t.Title, t.Date, t.ActivityType, wkt)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET date=EXCLUDED.date, path=EXCLUDED.path`)

	_, err := r.db.Exec(ctx, sb.String(), args...)
	return err
}

// BulkUpsertStatistics replaces statistics wholesale, keyed on the
// track foreign key, in one statement.
func (r *Repo) BulkUpsertStatistics(ctx context.Context, stats []Stat) error {
	if len(stats) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(stats)*14)
	sb.WriteString(`INSERT INTO statistics
		(track_id, total_km, total_time_seconds, avg_speed, max_speed, ascent, descent,
		 min_altitude, max_altitude, calories, avg_cadence, avg_heart, max_heart, avg_temperature)
		VALUES `)
	for i, st := range stats {
		if i > 0 {
			sb.WriteByte(',')
		}
		n := i * 14
		sb.WriteByte('(')
		for j := 1; j <= 14; j++ {
			if j > 1 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", n+j)
		}
		sb.WriteByte(')')
		args = append(args,
			st.TrackID, st.TotalKm, st.TotalTimeSeconds, st.AvgSpeed, st.MaxSpeed,
			st.Ascent, st.Descent, st.MinAltitude, st.MaxAltitude, st.Calories,
			st.AvgCadence, st.AvgHeart, st.MaxHeart, st.AvgTemperature)
	}
	sb.WriteString(` ON CONFLICT (track_id) DO UPDATE SET
		total_km=EXCLUDED.total_km, total_time_seconds=EXCLUDED.total_time_seconds,
		avg_speed=EXCLUDED.avg_speed, max_speed=EXCLUDED.max_speed,
		ascent=EXCLUDED.ascent, descent=EXCLUDED.descent,
		min_altitude=EXCLUDED.min_altitude, max_altitude=EXCLUDED.max_altitude,
		calories=EXCLUDED.calories, avg_cadence=EXCLUDED.avg_cadence,
		avg_heart=EXCLUDED.avg_heart, max_heart=EXCLUDED.max_heart,
		avg_temperature=EXCLUDED.avg_temperature`)

	_, err := r.db.Exec(ctx, sb.String(), args...)
	return err
}

// DeleteByTrip wipes all tracks and their statistics for a full
// "rewrite all" resynchronization.
func (r *Repo) DeleteByTrip(ctx context.Context, tripID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM statistics WHERE track_id IN (SELECT id FROM tracks WHERE trip_id=$1)
	`, tripID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `DELETE FROM tracks WHERE trip_id=$1`, tripID)
	return err
}

// WithStats loads the trip's tracks joined with their statistics,
// ordered by date, for the map view.
func (r *Repo) WithStats(ctx context.Context, tripID string) ([]WithStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.trip_id, t.title, t.date, t.activity_type, ST_AsText(t.path),
		       s.total_km, s.total_time_seconds, s.avg_speed, s.max_speed, s.ascent, s.descent,
		       s.min_altitude, s.max_altitude, s.calories, s.avg_cadence, s.avg_heart, s.max_heart,
		       s.avg_temperature
		FROM tracks t
		LEFT JOIN statistics s ON s.track_id = t.id
		WHERE t.trip_id=$1
		ORDER BY t.date
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WithStats
	for rows.Next() {
		var (
			ws      WithStats
			wkt     *string
			totalKm *float64
			totalS  *float64
			avgSpd, maxSpd, ascent, descent, minAlt, maxAlt *float64
			calories *int
			avgCad, avgHR, maxHR, avgTemp *float64
		)
		if err := rows.Scan(&ws.ID, &ws.TripID, &ws.Title, &ws.Date, &ws.ActivityType, &wkt,
			&totalKm, &totalS, &avgSpd, &maxSpd, &ascent, &descent,
			&minAlt, &maxAlt, &calories, &avgCad, &avgHR, &maxHR, &avgTemp); err != nil {
			return nil, err
		}

		if wkt != nil {
			line, err := geo.ParseLineStringWKT(*wkt)
			if err == nil {
				ws.Path = line
			}
		}
		if totalKm != nil && totalS != nil {
			ws.Stats = &activity.Statistic{
				TotalKm:          *totalKm,
				TotalTimeSeconds: *totalS,
				AvgSpeed:         avgSpd,
				MaxSpeed:         maxSpd,
				Ascent:           ascent,
				Descent:          descent,
				MinAltitude:      minAlt,
				MaxAltitude:      maxAlt,
				Calories:         calories,
				AvgCadence:       avgCad,
				AvgHeart:         avgHR,
				MaxHeart:         maxHR,
				AvgTemperature:   avgTemp,
			}
		}
		result = append(result, ws)
	}
	return result, nil
}
