package garmin

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nezinomas/maps/internal/activity"
)

// The three expected ways a Garmin session can fail. Everything else is
// a plain wrapped error.
var (
	ErrConnection  = errors.New("garmin: connection failed")
	ErrAuth        = errors.New("garmin: authentication failed")
	ErrRateLimited = errors.New("garmin: too many requests")
)

// API is the slice of Garmin Connect the sync flow needs. The concrete
// Client talks HTTP; tests substitute a fake.
type API interface {
	Login(ctx context.Context) error
	Activities(ctx context.Context, start, limit int) ([]activity.Summary, error)
	ActivitiesByDate(ctx context.Context, start, end time.Time) ([]activity.Summary, error)
	DownloadOriginal(ctx context.Context, activityID string) ([]byte, error)
}

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	token    string
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Login opens a session and keeps the bearer token for later calls.
// Failures are classified into the three sentinel errors so the caller
// can fold them all into one user-facing message.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signin", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	c.token = session.Token
	return nil
}

// Activities lists the most recent activity summaries.
func (c *Client) Activities(ctx context.Context, start, limit int) ([]activity.Summary, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(limit))
	return c.listActivities(ctx, q)
}

const byDatePageSize = 100

// ActivitiesByDate lists every activity within the date range,
// paginating until the server runs dry.
func (c *Client) ActivitiesByDate(ctx context.Context, start, end time.Time) ([]activity.Summary, error) {
	var all []activity.Summary
	for offset := 0; ; offset += byDatePageSize {
		q := url.Values{}
		q.Set("startDate", start.Format("2006-01-02"))
		q.Set("endDate", end.Format("2006-01-02"))
		q.Set("start", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(byDatePageSize))

		page, err := c.listActivities(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < byDatePageSize {
			return all, nil
		}
	}
}

func (c *Client) listActivities(ctx context.Context, q url.Values) ([]activity.Summary, error) {
	u := c.baseURL + "/activitylist-service/activities/search/activities?" + q.Encode()
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list activities: status %d", resp.StatusCode)
	}

	var summaries []activity.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return summaries, nil
}

// DownloadOriginal fetches the raw trackpoint payload for one activity.
// Garmin usually wraps the file in a zip container; the single
// trackpoint file is extracted from it. A container without one means
// the activity has no file, which is not an error.
func (c *Client) DownloadOriginal(ctx context.Context, activityID string) ([]byte, error) {
	u := c.baseURL + "/download-service/files/activity/" + url.PathEscape(activityID)
	resp, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("download activity %s: %w", activityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download activity %s: status %d", activityID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download activity %s: %w", activityID, err)
	}

	if isZip(data) {
		return extractTrackFile(data)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.http.Do(req)
}

var zipMagic = []byte("PK\x03\x04")

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// extractTrackFile pulls the first FIT entry out of a zip container.
// The store names every payload {id}.fit, so only FIT entries may come
// out of here; anything else in the container is ignored. No matching
// entry yields (nil, nil).
func extractTrackFile(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip container: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".fit") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read zip entry %s: %w", f.Name, err)
		}
		return payload, nil
	}
	return nil, nil
}
