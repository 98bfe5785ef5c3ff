// Package feed turns podcast and news feeds into playlist items.
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"briefcast/types"

	"github.com/mmcdole/gofeed"
)

// Presets maps short names to feed URLs.
var Presets = map[string]string{
	"cna": "https://www.channelnewsasia.com/api/v1/rss-outbound-feed?_format=xml",
	"st":  "https://www.straitstimes.com/news/singapore/rss.xml",
	"hn":  "https://hnrss.org/newest",
	"tr":  "https://www.technologyreview.com/feed/",
}

// ResolveURL returns the preset URL for name, or name itself.
func ResolveURL(name string) string {
	if url, ok := Presets[strings.ToLower(name)]; ok {
		return url
	}
	return name
}

// Fetch downloads and converts a feed, keeping at most max items (0 keeps all).
func Fetch(ctx context.Context, feedURL string, max int) ([]types.PlaylistItem, error) {
	f, err := gofeed.NewParser().ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return Items(f, max), nil
}

// Parse converts a feed document read from r.
func Parse(r io.Reader, max int) ([]types.PlaylistItem, error) {
	f, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return Items(f, max), nil
}

// Items converts parsed feed entries. Entries with an audio enclosure play
// directly; the rest are generated from their link.
func Items(f *gofeed.Feed, max int) []types.PlaylistItem {
	count := len(f.Items)
	if max > 0 {
		count = min(count, max)
	}
	items := make([]types.PlaylistItem, 0, count)
	for _, it := range f.Items[:count] {
		key := it.GUID
		if key == "" {
			key = it.Link
		}
		if key == "" {
			continue
		}
		item := types.PlaylistItem{ID: "feed-" + GenerateID(key), Title: strings.TrimSpace(it.Title)}
		if audio := audioEnclosure(it); audio != "" {
			item.AudioURL = audio
		} else if it.Link != "" {
			item.Source = types.ContentSource{Kind: types.SourceURLs, URLs: []string{it.Link}}
		} else {
			continue
		}
		items = append(items, item)
	}
	return items
}

func audioEnclosure(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL
		}
		if enc.Type == "" && (strings.HasSuffix(enc.URL, ".mp3") || strings.HasSuffix(enc.URL, ".m4a")) {
			return enc.URL
		}
	}
	return ""
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
