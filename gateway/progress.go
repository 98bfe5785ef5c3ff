package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// Progress is one event from the server-push progress stream.
type Progress struct {
	Progress int    `json:"progress"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// SubscribeProgress opens the progress stream for token. The returned channel
// is closed after a done event, when the stream ends, or when ctx is cancelled.
func (c *Client) SubscribeProgress(ctx context.Context, token string) (<-chan Progress, error) {
	resp, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/progress?token=" + url.QueryEscape(token),
		headers: map[string]string{"Accept": "text/event-stream"},
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan Progress)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var p Progress
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &p); err != nil {
				log.Printf("⚠️ Skipping malformed progress event: %v", err)
				continue
			}
			select {
			case ch <- p:
			case <-ctx.Done():
				return
			}
			if p.Done {
				return
			}
		}
	}()
	return ch, nil
}
