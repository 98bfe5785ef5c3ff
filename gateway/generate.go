package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"briefcast/config"
	"briefcast/types"
)

// Media is a binary response body plus the metadata headers that came with it.
type Media struct {
	Data        []byte
	ContentType string
	Duration    float64 // seconds, 0 when the service did not say
	Cached      bool
}

// NewProgressToken returns an opaque token correlating a generation request
// with its progress stream.
func NewProgressToken() string {
	return uuid.NewString()
}

// GeneratePodcast synthesises audio from free text.
func (c *Client) GeneratePodcast(ctx context.Context, text, token string) (*Media, error) {
	return c.media(ctx, request{
		method:  http.MethodPost,
		path:    "/podcast/generate",
		payload: map[string]string{"text": text},
		headers: progressHeader(token),
	})
}

// GenerateFromURLs synthesises one audio briefing from several articles.
func (c *Client) GenerateFromURLs(ctx context.Context, urls []string, token string) (*Media, error) {
	return c.media(ctx, request{
		method:  http.MethodPost,
		path:    "/podcast/generate-from-urls",
		payload: map[string][]string{"urls": urls},
		headers: progressHeader(token),
	})
}

// GenerateBriefing synthesises (or returns the cached) personal briefing of
// the signed-in user.
func (c *Client) GenerateBriefing(ctx context.Context, token string) (*Media, error) {
	m, err := c.media(ctx, request{
		method:  http.MethodPost,
		path:    "/briefing/generate",
		headers: progressHeader(token),
	})
	if err != nil {
		return nil, err
	}
	if m.Cached {
		log.Printf("💾 Personal briefing served from cache (%.0fs)", m.Duration)
	}
	return m, nil
}

// Generate dispatches to the endpoint matching the source kind.
func (c *Client) Generate(ctx context.Context, src types.ContentSource, token string) (*Media, error) {
	switch src.Kind {
	case types.SourceText:
		return c.GeneratePodcast(ctx, src.Text, token)
	case types.SourceURLs:
		return c.GenerateFromURLs(ctx, src.URLs, token)
	case types.SourcePersonal:
		return c.GenerateBriefing(ctx, token)
	}
	return nil, fmt.Errorf("unsupported content source %q", src.Kind)
}

// BriefingTranscript returns the saved transcript text of the personal
// briefing. A 404 means none is cached yet.
func (c *Client) BriefingTranscript(ctx context.Context) (string, error) {
	var resp struct {
		Transcript string `json:"transcript"`
	}
	err := c.doJSON(ctx, request{method: http.MethodGet, path: "/briefing/transcript"}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Transcript, nil
}

// InvalidateBriefing drops the server-side cached personal briefing so the
// next GenerateBriefing call is fresh.
func (c *Client) InvalidateBriefing(ctx context.Context) error {
	return c.doJSON(ctx, request{method: http.MethodPost, path: "/briefing/invalidate"}, nil)
}

// GenerateVideo renders a premium video briefing. Without the premium
// entitlement the service answers 403 (ErrPremiumRequired).
func (c *Client) GenerateVideo(ctx context.Context, title, summary, token string) (*Media, error) {
	headers := progressHeader(token)
	c.mu.RLock()
	if c.premium {
		headers[config.HeaderPremium] = "true"
	}
	c.mu.RUnlock()
	return c.media(ctx, request{
		method:  http.MethodPost,
		path:    "/video/generate",
		payload: map[string]string{"title": title, "summary": summary},
		headers: headers,
	})
}

// media performs a non-retried request and reads the whole binary body.
func (c *Client) media(ctx context.Context, r request) (*Media, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", r.path, err)
	}
	m := &Media{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Cached:      strings.EqualFold(resp.Header.Get(config.HeaderCached), "true"),
	}
	if d := resp.Header.Get(config.HeaderDuration); d != "" {
		if secs, err := strconv.ParseFloat(d, 64); err == nil && secs > 0 {
			m.Duration = secs
		}
	}
	return m, nil
}

func progressHeader(token string) map[string]string {
	h := make(map[string]string, 2)
	if token != "" {
		h[config.HeaderProgressToken] = token
	}
	return h
}
