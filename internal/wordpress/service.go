package wordpress

import (
	"context"
	"fmt"
	"strings"

	"github.com/nezinomas/maps/internal/db"
	"github.com/nezinomas/maps/internal/trip"
)

// Blog is the minimal client surface the aggregator needs; tests
// substitute a fake for the HTTP client.
type Blog interface {
	Posts(ctx context.Context, category int) ([]Post, error)
	CommentCount(ctx context.Context, postID int) (int, error)
}

// Service mirrors the blog's per-post comment counts into the
// database so the map page can show them without calling WordPress on
// every render.
type Service struct {
	db   db.Querier
	blog Blog
}

func NewService(querier db.Querier, blog Blog) *Service {
	return &Service{db: querier, blog: blog}
}

// CommentQty is one stored per-post comment count.
type CommentQty struct {
	TripID string `json:"trip_id"`
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Qty    int    `json:"qty"`
}

// PushCommentQty fetches the trip's blog posts, counts their comments
// and upserts the counts in one statement. A trip without a blog
// category is a no-op.
func (s *Service) PushCommentQty(ctx context.Context, tr trip.Trip) error {
	if tr.BlogCategory == 0 {
		return nil
	}

	posts, err := s.blog.Posts(ctx, tr.BlogCategory)
	if err != nil {
		return fmt.Errorf("sync comments: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	rows := make([]CommentQty, 0, len(posts))
	for _, p := range posts {
		qty, err := s.blog.CommentCount(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("sync comments: %w", err)
		}
		rows = append(rows, CommentQty{
			TripID: tr.ID,
			PostID: p.ID,
			Title:  p.Title.Rendered,
			Link:   p.Link,
			Qty:    qty,
		})
	}
	return s.upsert(ctx, rows)
}

// List returns the stored counts for a trip, newest post first.
func (s *Service) List(ctx context.Context, tripID string) ([]CommentQty, error) {
	rows, err := s.db.Query(ctx, `
		SELECT trip_id, post_id, title, link, qty
		FROM comment_qty WHERE trip_id=$1 ORDER BY post_id DESC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CommentQty
	for rows.Next() {
		var cq CommentQty
		if err := rows.Scan(&cq.TripID, &cq.PostID, &cq.Title, &cq.Link, &cq.Qty); err != nil {
			return nil, err
		}
		result = append(result, cq)
	}
	return result, nil
}

func (s *Service) upsert(ctx context.Context, rows []CommentQty) error {
	var sb strings.Builder
	args := make([]any, 0, len(rows)*5)
	sb.WriteString(`INSERT INTO comment_qty (trip_id, post_id, title, link, qty) VALUES `)
	for i, cq := range rows {
		if i > 0 {
			sb.WriteByte(',')
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, cq.TripID, cq.PostID, cq.Title, cq.Link, cq.Qty)
	}
	sb.WriteString(` ON CONFLICT (trip_id, post_id) DO UPDATE SET
		title=EXCLUDED.title, link=EXCLUDED.link, qty=EXCLUDED.qty`)

	_, err := s.db.Exec(ctx, sb.String(), args...)
	return err
}
