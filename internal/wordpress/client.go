package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const postsPageSize = 100

// Post is the slice of a WordPress post the comment aggregator needs.
type Post struct {
	ID    int    `json:"id"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
}

// Client reads the public WordPress REST API of the trip blog.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Posts lists every post in the category, walking the paginated API.
func (c *Client) Posts(ctx context.Context, category int) ([]Post, error) {
	var all []Post
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("categories", strconv.Itoa(category))
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(postsPageSize))

		u := c.baseURL + "/wp-json/wp/v2/posts?" + q.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("list posts: status %d", resp.StatusCode)
		}

		var posts []Post
		err = json.NewDecoder(resp.Body).Decode(&posts)
		totalPages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}

		all = append(all, posts...)
		if page >= totalPages || len(posts) < postsPageSize {
			return all, nil
		}
	}
}

// CommentCount returns the number of approved comments on one post,
// taken from the X-WP-Total header rather than the comment bodies.
func (c *Client) CommentCount(ctx context.Context, postID int) (int, error) {
	u := fmt.Sprintf("%s/wp-json/wp/v2/comments?post=%d&per_page=1", c.baseURL, postID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("count comments for post %d: %w", postID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count comments for post %d: status %d", postID, resp.StatusCode)
	}

	total, err := strconv.Atoi(resp.Header.Get("X-WP-Total"))
	if err != nil {
		return 0, fmt.Errorf("count comments for post %d: bad total header", postID)
	}
	return total, nil
}
