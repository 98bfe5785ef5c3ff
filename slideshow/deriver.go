// Package slideshow keeps an image in step with the briefing: it finds the
// sentence being spoken, turns it into a short search query and looks up a
// picture for it.
package slideshow

import (
	"context"
	"log"
	"sync"
	"time"

	"briefcast/clock"
	"briefcast/config"
	"briefcast/types"
)

// TranscriptSource looks up the transcript of a track by title.
type TranscriptSource interface {
	GetTranscriptForTrack(title string) (types.Transcript, bool)
}

// ImageSearcher finds a representative image URL for a query.
type ImageSearcher interface {
	SearchImage(ctx context.Context, query string) (string, error)
}

// Lookup results reported to Options.OnLookup.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupEmpty = "empty"
	LookupError = "error"
)

// Frame is what the slideshow shows right now.
type Frame struct {
	TrackID  string `json:"track_id"`
	Syncing  bool   `json:"syncing"` // no transcript for this track
	Sentence string `json:"sentence,omitempty"`
	Query    string `json:"query,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Options configures a Deriver.
type Options struct {
	Transcripts TranscriptSource
	Images      ImageSearcher
	Cache       Cache
	Clock       clock.Clock
	Debounce    time.Duration
	// OnLookup, if set, is told how each image lookup resolved.
	OnLookup func(result string)
}

// Deriver turns playback position into slideshow frames.
type Deriver struct {
	transcripts TranscriptSource
	images      ImageSearcher
	cache       Cache
	clock       clock.Clock
	debounce    time.Duration
	onLookup    func(string)

	mu        sync.Mutex
	frame     Frame
	lastQuery string
	timer     clock.Timer
	pending   map[string]bool
}

func New(opts Options) *Deriver {
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = config.SlideshowDebounce
	}
	if opts.OnLookup == nil {
		opts.OnLookup = func(string) {}
	}
	return &Deriver{
		transcripts: opts.Transcripts,
		images:      opts.Images,
		cache:       opts.Cache,
		clock:       opts.Clock,
		debounce:    opts.Debounce,
		onLookup:    opts.OnLookup,
		pending:     make(map[string]bool),
	}
}

// Update recomputes the frame for track at currentTime. A changed query
// schedules one debounced image lookup; an unchanged one costs nothing.
func (d *Deriver) Update(track types.Track, currentTime, duration float64) Frame {
	d.mu.Lock()
	defer d.mu.Unlock()

	if track.ID != d.frame.TrackID {
		d.frame = Frame{TrackID: track.ID, ImageURL: d.frame.ImageURL}
		d.lastQuery = ""
		d.stopTimerLocked()
	}

	t, ok := d.transcripts.GetTranscriptForTrack(track.Title)
	if !ok {
		d.frame.Syncing = true
		d.frame.Sentence, d.frame.Query = "", ""
		return d.frame
	}
	sentence, ok := CurrentSentence(t, currentTime, duration)
	if !ok {
		d.frame.Syncing = true
		return d.frame
	}
	d.frame.Syncing = false
	d.frame.Sentence = sentence

	q := Keywords(sentence)
	if q == d.lastQuery {
		return d.frame
	}
	d.lastQuery = q
	d.frame.Query = q

	d.stopTimerLocked()
	d.timer = d.clock.AfterFunc(d.debounce, func() { d.resolve(q) })
	return d.frame
}

// Frame returns the current frame.
func (d *Deriver) Frame() Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Reset forgets the current frame, e.g. when the user changes. Cached
// lookups are kept.
func (d *Deriver) Reset() {
	d.mu.Lock()
	d.stopTimerLocked()
	d.frame = Frame{}
	d.lastQuery = ""
	d.mu.Unlock()
}

func (d *Deriver) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// resolve fetches the image for q unless the query moved on or the lookup
// is already running.
func (d *Deriver) resolve(q string) {
	d.mu.Lock()
	if q != d.lastQuery || d.pending[q] {
		d.mu.Unlock()
		return
	}
	d.pending[q] = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url, result := d.lookup(ctx, q)
	d.onLookup(result)

	d.mu.Lock()
	delete(d.pending, q)
	if url != "" && q == d.lastQuery {
		d.frame.ImageURL = url
	}
	d.mu.Unlock()
}

func (d *Deriver) lookup(ctx context.Context, q string) (string, string) {
	url, found, err := d.cache.Get(ctx, q)
	if err != nil {
		log.Printf("⚠️ Image cache read failed: %v", err)
	}
	if found {
		return url, LookupHit
	}

	url, err = d.images.SearchImage(ctx, q)
	result := LookupMiss
	switch {
	case err != nil:
		log.Printf("⚠️ Image lookup failed for %q: %v", q, err)
		url, result = "", LookupError
	case url == "":
		result = LookupEmpty
	}
	if err := d.cache.Set(ctx, q, url); err != nil {
		log.Printf("⚠️ Image cache write failed: %v", err)
	}
	return url, result
}
