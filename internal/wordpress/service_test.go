package wordpress

import (
	"context"
	"errors"
	"testing"

	"github.com/nezinomas/maps/internal/trip"

	"github.com/pashagolub/pgxmock/v3"
)

type fakeBlog struct {
	posts    []Post
	postsErr error
	counts   map[int]int
	countErr error
}

func (f *fakeBlog) Posts(ctx context.Context, category int) ([]Post, error) {
	return f.posts, f.postsErr
}

func (f *fakeBlog) CommentCount(ctx context.Context, postID int) (int, error) {
	return f.counts[postID], f.countErr
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func post(id int, title string) Post {
	p := Post{ID: id, Link: "https://blog/p"}
	p.Title.Rendered = title
	return p
}

func TestPushCommentQty(t *testing.T) {
	mock := newMock(t)
	blog := &fakeBlog{
		posts:  []Post{post(1, "Day one"), post(2, "Day two")},
		counts: map[int]int{1: 3, 2: 0},
	}

	mock.ExpectExec(`INSERT INTO comment_qty .+ ON CONFLICT \(trip_id, post_id\) DO UPDATE`).
		WithArgs(
			"trip-1", 1, "Day one", "https://blog/p", 3,
			"trip-1", 2, "Day two", "https://blog/p", 0,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	svc := NewService(mock, blog)
	if err := svc.PushCommentQty(context.Background(), trip.Trip{ID: "trip-1", BlogCategory: 7}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPushCommentQtyNoCategory(t *testing.T) {
	mock := newMock(t)

	svc := NewService(mock, &fakeBlog{postsErr: errors.New("must not be called")})
	if err := svc.PushCommentQty(context.Background(), trip.Trip{ID: "trip-1"}); err != nil {
		t.Fatalf("no category must be a no-op: %v", err)
	}
}

func TestPushCommentQtyNoPosts(t *testing.T) {
	mock := newMock(t)

	svc := NewService(mock, &fakeBlog{})
	if err := svc.PushCommentQty(context.Background(), trip.Trip{ID: "trip-1", BlogCategory: 7}); err != nil {
		t.Fatalf("no posts must be a no-op: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statements expected: %v", err)
	}
}

func TestPushCommentQtyBlogError(t *testing.T) {
	mock := newMock(t)

	svc := NewService(mock, &fakeBlog{postsErr: errors.New("blog down")})
	if err := svc.PushCommentQty(context.Background(), trip.Trip{ID: "trip-1", BlogCategory: 7}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestList(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT trip_id, post_id, title, link, qty`).
		WithArgs("trip-1").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id", "post_id", "title", "link", "qty"}).
			AddRow("trip-1", 2, "Day two", "https://blog/p2", 0).
			AddRow("trip-1", 1, "Day one", "https://blog/p1", 3))

	svc := NewService(mock, &fakeBlog{})
	rows, err := svc.List(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].PostID != 2 || rows[1].Qty != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
