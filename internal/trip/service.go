package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nezinomas/maps/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateTrip(ctx context.Context, input Trip) (Trip, error) {
	input.ID = uuid.NewString()

	slug, err := s.uniqueSlug(ctx, input.Title, input.ID)
	if err != nil {
		return Trip{}, err
	}
	input.Slug = slug

	row := s.db.QueryRow(ctx, `
		INSERT INTO trips (id, title, slug, description, start_date, end_date, blog_category)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at
	`, input.ID, input.Title, input.Slug, input.Description, input.StartDate, input.EndDate, input.BlogCategory)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Trip{}, err
	}
	return input, nil
}

func (s *Service) UpdateTrip(ctx context.Context, id string, patch Trip) (Trip, error) {
	trip, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}

	if patch.Title != "" && patch.Title != trip.Title {
		trip.Title = patch.Title
		slug, err := s.uniqueSlug(ctx, trip.Title, trip.ID)
		if err != nil {
			return Trip{}, err
		}
		trip.Slug = slug
	}
	if patch.Description != "" {
		trip.Description = patch.Description
	}
	if !patch.StartDate.IsZero() {
		trip.StartDate = patch.StartDate
	}
	if !patch.EndDate.IsZero() {
		trip.EndDate = patch.EndDate
	}
	if patch.BlogCategory != 0 {
		trip.BlogCategory = patch.BlogCategory
	}

	_, err = s.db.Exec(ctx, `
		UPDATE trips
		SET title=$2, slug=$3, description=$4, start_date=$5, end_date=$6, blog_category=$7
		WHERE id=$1
	`, trip.ID, trip.Title, trip.Slug, trip.Description, trip.StartDate, trip.EndDate, trip.BlogCategory)
	if err != nil {
		return Trip{}, err
	}
	return trip, nil
}

const tripColumns = `id, title, slug, description, start_date, end_date, blog_category, created_at`

func (s *Service) GetTrip(ctx context.Context, id string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips WHERE id=$1
	`, id)
	return scanTrip(row)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips WHERE slug=$1
	`, slug)
	return scanTrip(row)
}

// Active returns the trip whose date range contains today, the most
// recently created one when several overlap. A nil trip with a nil
// error means no trip is active.
func (s *Service) Active(ctx context.Context) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE start_date <= CURRENT_DATE AND end_date >= CURRENT_DATE
		ORDER BY created_at DESC
		LIMIT 1
	`)
	trip, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *Service) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		ORDER BY start_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.StartDate, &t.EndDate, &t.BlogCategory, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM trips WHERE id=$1`, id)
	return err
}

func scanTrip(row pgx.Row) (Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.Title, &t.Slug, &t.Description, &t.StartDate, &t.EndDate, &t.BlogCategory, &t.CreatedAt)
	return t, err
}

// uniqueSlug slugifies the title and resolves collisions with a
// numeric suffix, skipping the trip's own row on update.
func (s *Service) uniqueSlug(ctx context.Context, title, selfID string) (string, error) {
	base := Slugify(title)

	taken, err := s.slugTaken(ctx, base, selfID)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for suffix := 1; ; suffix++ {
		candidate := fmt.Sprintf("%s-%d", base, suffix)
		taken, err := s.slugTaken(ctx, candidate, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *Service) slugTaken(ctx context.Context, slug, selfID string) (bool, error) {
	var taken bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM trips WHERE slug=$1 AND id<>$2)
	`, slug, selfID).Scan(&taken)
	return taken, err
}

// Slugify lowercases the title and collapses everything that is not a
// letter or digit into single dashes.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Ongoing reports whether the trip's date range contains the given day.
func (t Trip) Ongoing(now time.Time) bool {
	start, end := t.WindowUTC()
	day := now.UTC().Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// WindowUTC returns the trip's date range as midnight-UTC boundaries.
func (t Trip) WindowUTC() (time.Time, time.Time) {
	return midnightUTC(t.StartDate), midnightUTC(t.EndDate)
}

func midnightUTC(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
