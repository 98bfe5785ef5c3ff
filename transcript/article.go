package transcript

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"briefcast/config"

	readability "github.com/go-shiori/go-readability"
)

// ArticleFetcher returns the readable text of a web page.
type ArticleFetcher interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
}

// ReadabilityFetcher extracts article text with go-readability.
type ReadabilityFetcher struct {
	Timeout time.Duration
}

// FetchText downloads the page and returns its main text content.
func (f ReadabilityFetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("article URL is empty")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = config.ArticleFetchTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	article, err := readability.FromURL(pageURL, timeout)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}
	log.Printf("✓ Extracted transcript text: %s", article.Title)
	return strings.TrimSpace(article.TextContent), nil
}
