package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// Bookmark is a saved briefing card.
type Bookmark struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	AudioURL    string   `json:"audio_url,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// Briefing is a home feed card built from the user's followed sources.
type Briefing struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	SourceType  string `json:"source_type,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Bookmarks lists the signed-in user's bookmarks, newest first.
func (c *Client) Bookmarks(ctx context.Context) ([]Bookmark, error) {
	var out []Bookmark
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/bookmarks"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddBookmark saves a briefing card and returns it with its server id.
func (c *Client) AddBookmark(ctx context.Context, b Bookmark) (*Bookmark, error) {
	var out Bookmark
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: "/bookmarks", payload: b}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBookmark removes a bookmark by server id.
func (c *Client) DeleteBookmark(ctx context.Context, id int) error {
	return c.doJSON(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/bookmarks/%d", id)}, nil)
}

// Briefings lists the home feed cards.
func (c *Client) Briefings(ctx context.Context) ([]Briefing, error) {
	var resp struct {
		Briefings []Briefing `json:"briefings"`
	}
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: "/briefings"}, &resp); err != nil {
		return nil, err
	}
	return resp.Briefings, nil
}
