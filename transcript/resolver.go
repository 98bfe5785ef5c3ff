package transcript

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"briefcast/config"
	"briefcast/types"
)

// PersonalFetcher returns the saved transcript text of the signed-in user's
// personal briefing.
type PersonalFetcher interface {
	BriefingTranscript(ctx context.Context) (string, error)
}

// Resolver answers transcript lookups from the static store first, then from
// transcripts prepared at runtime for generated briefings.
type Resolver struct {
	static   *Store
	personal PersonalFetcher
	articles ArticleFetcher

	mu       sync.RWMutex
	prepared map[string]types.Transcript
}

// NewResolver wires the runtime sources; personal and articles may be nil.
func NewResolver(static *Store, personal PersonalFetcher, articles ArticleFetcher) *Resolver {
	return &Resolver{
		static:   static,
		personal: personal,
		articles: articles,
		prepared: make(map[string]types.Transcript),
	}
}

// GetTranscriptForTrack returns a copy of the transcript known for title.
func (r *Resolver) GetTranscriptForTrack(title string) (types.Transcript, bool) {
	if r.static != nil {
		if t, ok := r.static.GetTranscriptForTrack(title); ok {
			return t, true
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.prepared[title]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Prepare fetches a runtime transcript for a generated briefing and memoises
// it under title. Titles already known are left untouched.
func (r *Resolver) Prepare(ctx context.Context, id, title string, src types.ContentSource) error {
	if _, ok := r.GetTranscriptForTrack(title); ok {
		return nil
	}

	text, err := r.fetchText(ctx, id, src)
	if err != nil {
		return err
	}
	t := FromText(text)
	if len(t) == 0 {
		return nil
	}

	r.mu.Lock()
	r.prepared[title] = t
	r.mu.Unlock()
	log.Printf("📝 Transcript ready for %q (%d segments)", title, len(t))
	return nil
}

// Invalidate forgets a runtime transcript, e.g. after the briefing was regenerated.
func (r *Resolver) Invalidate(title string) {
	r.mu.Lock()
	delete(r.prepared, title)
	r.mu.Unlock()
}

// Reset forgets every runtime transcript.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.prepared = make(map[string]types.Transcript)
	r.mu.Unlock()
}

func (r *Resolver) fetchText(ctx context.Context, id string, src types.ContentSource) (string, error) {
	switch {
	case src.Kind == types.SourceText:
		return src.Text, nil

	case src.Kind == types.SourcePersonal || isPersonalID(id):
		if r.personal == nil {
			return "", nil
		}
		text, err := r.personal.BriefingTranscript(ctx)
		if err != nil {
			if isNotFound(err) {
				return "", nil
			}
			return "", fmt.Errorf("failed to fetch personal transcript: %w", err)
		}
		return text, nil

	case src.Kind == types.SourceURLs:
		if r.articles == nil {
			return "", nil
		}
		var parts []string
		for _, u := range src.URLs {
			text, err := r.articles.FetchText(ctx, u)
			if err != nil {
				log.Printf("⚠️ Article text unavailable for %s: %v", u, err)
				continue
			}
			if text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, " "), nil
	}
	return "", nil
}

// isNotFound reports whether a fetcher said nothing is stored remotely.
func isNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}

func isPersonalID(id string) bool {
	return id == config.TodaysBriefingID || id == config.CombinedBriefingID
}
