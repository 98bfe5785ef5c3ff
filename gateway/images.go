package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// SearchImage returns the URL of a representative image for query, or ""
// when the service found none.
func (c *Client) SearchImage(ctx context.Context, query string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	err := c.doJSON(ctx, request{
		method: http.MethodGet,
		path:   "/images/search?q=" + url.QueryEscape(query),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
