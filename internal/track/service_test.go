package track

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nezinomas/maps/internal/shared/geo"

	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query error")

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestTitleIDMap(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT title, id FROM tracks`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"title", "id"}).
			AddRow("100", "uuid-a").
			AddRow("200", "uuid-b"))

	repo := NewRepo(mock)
	ids, err := repo.TitleIDMap(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("title id map: %v", err)
	}
	if len(ids) != 2 || ids["100"] != "uuid-a" || ids["200"] != "uuid-b" {
		t.Fatalf("unexpected map: %v", ids)
	}
}

func TestBulkUpsertTracks(t *testing.T) {
	mock := newMock(t)

	line := geo.LineString{{25.1, 54.1}, {25.2, 54.2}}
	tracks := []Track{
		{ID: "uuid-a", TripID: "trip-1", Title: "100", Date: time.Now(), ActivityType: "cycling", Path: line},
		{ID: "uuid-b", TripID: "trip-1", Title: "200", Date: time.Now(), ActivityType: "cycling"},
	}

	mock.ExpectExec(`INSERT INTO tracks .+ ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(
			"uuid-a", "trip-1", "100", pgxmock.AnyArg(), "cycling", line.WKT(),
			"uuid-b", "trip-1", "200", pgxmock.AnyArg(), "cycling", nil,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	repo := NewRepo(mock)
	if err := repo.BulkUpsertTracks(context.Background(), tracks); err != nil {
		t.Fatalf("bulk upsert tracks: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBulkUpsertTracksEmpty(t *testing.T) {
	mock := newMock(t)

	repo := NewRepo(mock)
	if err := repo.BulkUpsertTracks(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert must be a no-op: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestBulkUpsertStatistics(t *testing.T) {
	mock := newMock(t)

	avg := 23.4
	stats := []Stat{{TrackID: "uuid-a"}}
	stats[0].TotalKm = 12.3
	stats[0].TotalTimeSeconds = 1918
	stats[0].AvgSpeed = &avg

	mock.ExpectExec(`INSERT INTO statistics .+ ON CONFLICT \(track_id\) DO UPDATE`).
		WithArgs(
			"uuid-a", 12.3, float64(1918), &avg, (*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*int)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepo(mock)
	if err := repo.BulkUpsertStatistics(context.Background(), stats); err != nil {
		t.Fatalf("bulk upsert statistics: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByTrip(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM statistics`).
		WithArgs("trip-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM tracks`).
		WithArgs("trip-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewRepo(mock)
	if err := repo.DeleteByTrip(context.Background(), "trip-1"); err != nil {
		t.Fatalf("delete by trip: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteByTripStatsError(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM statistics`).
		WithArgs("trip-1").
		WillReturnError(errQuery)

	repo := NewRepo(mock)
	if err := repo.DeleteByTrip(context.Background(), "trip-1"); !errors.Is(err, errQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestWithStats(t *testing.T) {
	mock := newMock(t)

	totalKm := 12.3
	totalS := 1918.0
	avg := 23.4
	mock.ExpectQuery(`SELECT t.id, t.trip_id`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "trip_id", "title", "date", "activity_type", "path",
			"total_km", "total_time_seconds", "avg_speed", "max_speed", "ascent", "descent",
			"min_altitude", "max_altitude", "calories", "avg_cadence", "avg_heart", "max_heart",
			"avg_temperature",
		}).AddRow(
			"uuid-a", "trip-1", "100", time.Now(), "cycling", strPtr("LINESTRING(25.1 54.1,25.2 54.2)"),
			&totalKm, &totalS, &avg, (*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*int)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil),
		).AddRow(
			"uuid-b", "trip-1", "200", time.Now(), "cycling", (*string)(nil),
			(*float64)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil), (*float64)(nil), (*int)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil),
			(*float64)(nil),
		))

	repo := NewRepo(mock)
	result, err := repo.WithStats(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("with stats: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result))
	}

	first := result[0]
	if first.Stats == nil || first.Stats.TotalKm != 12.3 {
		t.Fatalf("unexpected stats: %+v", first.Stats)
	}
	if len(first.Path) != 2 || first.Path[0] != (geo.Point{25.1, 54.1}) {
		t.Fatalf("unexpected path: %v", first.Path)
	}

	second := result[1]
	if second.Stats != nil {
		t.Fatalf("track without statistic must carry nil stats")
	}
	if second.Path != nil {
		t.Fatalf("track without geometry must carry nil path")
	}
}

func strPtr(s string) *string { return &s }
