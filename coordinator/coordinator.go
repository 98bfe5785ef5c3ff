// Package coordinator is the single owner of "what is playing": the current
// track, the audio cache, the active playlist and the one in-flight
// generation request.
package coordinator

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"briefcast/blob"
	"briefcast/clock"
	"briefcast/config"
	"briefcast/gateway"
	"briefcast/player"
	"briefcast/types"
)

var (
	// ErrGenerationInFlight rejects a generation while another one runs.
	ErrGenerationInFlight = errors.New("a briefing is already being generated")
	// ErrNotCached means Play was given no URL and nothing is cached for the id.
	ErrNotCached = errors.New("no audio cached for this briefing")
	// ErrNoSource means an item has neither audio nor anything to generate from.
	ErrNoSource = errors.New("briefing has no audio and no content to generate from")
	// ErrGenerationTimeout is reported to hooks when the hard timeout fires.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGenerationCancelled is reported to hooks when a generation was superseded.
	ErrGenerationCancelled = errors.New("generation cancelled")
)

// Gateway is the part of the remote service the coordinator drives.
type Gateway interface {
	Generate(ctx context.Context, src types.ContentSource, token string) (*gateway.Media, error)
	SubscribeProgress(ctx context.Context, token string) (<-chan gateway.Progress, error)
	SetUser(email string)
}

// Engine is the playback engine surface the coordinator controls.
type Engine interface {
	Load(track types.Track)
	Swap(track types.Track)
	Unload()
	Play()
	Pause()
	State() types.PlaybackState
	Subscribe(fn func(player.Event)) (unsubscribe func())
}

// TranscriptPreparer resolves transcripts for freshly generated briefings.
type TranscriptPreparer interface {
	Prepare(ctx context.Context, id, title string, src types.ContentSource) error
	Invalidate(title string)
	Reset()
}

// Hook receives lifecycle notifications. Hooks run outside coordinator locks.
type Hook interface {
	TrackStarted(track types.Track, cached bool)
	TrackEnded(track types.Track)
	GenerationFinished(gen types.GenerationState, took time.Duration, err error)
}

// Options wires a Coordinator.
type Options struct {
	Gateway     Gateway
	Engine      Engine
	Blobs       blob.Store
	Clock       clock.Clock
	Transcripts TranscriptPreparer // optional
	Hooks       []Hook
	Timeout     time.Duration // hard generation timeout
	Tick        time.Duration // progress display tick
	User        string
}

type cacheEntry struct {
	url      string
	handle   *blob.Handle // nil when the URL is not ours to release
	duration float64
}

// Coordinator mediates between UI triggers, the gateway and the engine.
type Coordinator struct {
	gw          Gateway
	engine      Engine
	blobs       blob.Store
	clock       clock.Clock
	transcripts TranscriptPreparer
	hooks       []Hook
	timeout     time.Duration
	tick        time.Duration

	// playMu serialises everything that ends in an engine call so the engine
	// never plays something other than the current track.
	playMu sync.Mutex

	mu        sync.Mutex
	user      string
	current   *types.Track
	isPlaying bool
	playlist  []types.PlaylistItem
	cache     map[string]cacheEntry
	gen       *generation
	notes     []types.Notification
	logs      []LogEntry
	maxLogs   int
	version   uint64

	subs      listeners
	unsubsEng func()
}

// New creates a coordinator and subscribes it to engine events.
func New(opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.GenerationTimeout
	}
	if opts.Tick <= 0 {
		opts.Tick = config.ProgressTick
	}
	c := &Coordinator{
		gw:          opts.Gateway,
		engine:      opts.Engine,
		blobs:       opts.Blobs,
		clock:       opts.Clock,
		transcripts: opts.Transcripts,
		hooks:       opts.Hooks,
		timeout:     opts.Timeout,
		tick:        opts.Tick,
		user:        opts.User,
		cache:       make(map[string]cacheEntry),
		maxLogs:     50,
	}
	c.unsubsEng = c.engine.Subscribe(c.onEngineEvent)
	return c
}

// Close detaches from the engine and releases every owned blob.
func (c *Coordinator) Close() {
	c.unsubsEng()
	c.Reset()
}

// Play makes id the current track. A non-empty url is cached under id and
// wins over any in-flight generation for the same id. With an empty url the
// cached entry is used; without one ErrNotCached is returned and nothing
// changes. A non-nil playlist replaces the active one.
func (c *Coordinator) Play(id, url, title string, playlist []types.PlaylistItem) error {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	var release *blob.Handle
	var stale *generation
	cached := url == ""
	entry, ok := c.cache[id]
	if url != "" {
		if ok && entry.url != url {
			release = entry.handle
		}
		if !ok || entry.url != url {
			entry = cacheEntry{url: url}
			c.cache[id] = entry
		}
		if c.gen != nil && c.gen.state.ID == id {
			stale = c.gen
			c.dropGenerationLocked(stale)
			c.addLogLocked("Generation for " + id + " superseded by a resolved URL")
		}
	} else if !ok {
		c.mu.Unlock()
		return ErrNotCached
	}
	if playlist != nil {
		c.playlist = append([]types.PlaylistItem(nil), playlist...)
	}
	track := types.Track{ID: id, Src: entry.url, Title: title, Duration: entry.duration}
	c.current = &track
	c.isPlaying = true
	c.addLogLocked("Playing " + title)
	c.mu.Unlock()

	if release != nil {
		release.Release()
	}
	if stale != nil {
		c.generationFinished(stale, ErrGenerationCancelled)
	}
	if cached {
		log.Printf("💾 Playing %q from cache", title)
	} else {
		log.Printf("▶️ Playing %q", title)
	}
	c.engine.Load(track)
	for _, h := range c.hooks {
		h.TrackStarted(track, cached)
	}
	c.publish()
	return nil
}

// PlayOrGenerate is what a "play" button calls: the current track toggles,
// a known URL or cache entry plays, anything else starts a generation.
func (c *Coordinator) PlayOrGenerate(item types.PlaylistItem, playlist []types.PlaylistItem) error {
	c.mu.Lock()
	isCurrent := c.current != nil && c.current.ID == item.ID
	playing := c.isPlaying
	_, cached := c.cache[item.ID]
	if playlist != nil && !cached && item.AudioURL == "" {
		c.playlist = append([]types.PlaylistItem(nil), playlist...)
	}
	c.mu.Unlock()

	switch {
	case isCurrent && item.AudioURL == "":
		c.SetPlaying(!playing)
		return nil
	case item.AudioURL != "" || cached:
		return c.Play(item.ID, item.AudioURL, item.Title, playlist)
	case !item.Source.IsZero():
		return c.RequestGeneration(item.ID, item.Title, item.Source)
	}
	return ErrNoSource
}

// Pause stops playback without changing the current track.
func (c *Coordinator) Pause() {
	c.SetPlaying(false)
}

// SetPlaying asks the engine to play or pause the current track. The shared
// flag then follows what the engine actually did.
func (c *Coordinator) SetPlaying(playing bool) {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	hasTrack := c.current != nil
	c.isPlaying = playing && hasTrack
	c.mu.Unlock()

	if hasTrack {
		if playing {
			c.engine.Play()
		} else {
			c.engine.Pause()
		}
	}
	c.publish()
}

// SkipNext plays the item after the current one. It is a no-op at the end
// of the playlist.
func (c *Coordinator) SkipNext() error {
	return c.skip(1)
}

// SkipPrevious plays the item before the current one. It is a no-op at the
// start of the playlist.
func (c *Coordinator) SkipPrevious() error {
	return c.skip(-1)
}

func (c *Coordinator) skip(step int) error {
	c.mu.Lock()
	i := c.indexLocked()
	if i < 0 || i+step < 0 || i+step >= len(c.playlist) {
		c.mu.Unlock()
		return nil
	}
	item := c.playlist[i+step]
	c.mu.Unlock()
	return c.PlayOrGenerate(item, nil)
}

// HasNext reports whether SkipNext would move.
func (c *Coordinator) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexLocked()
	return i >= 0 && i < len(c.playlist)-1
}

// HasPrevious reports whether SkipPrevious would move.
func (c *Coordinator) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexLocked() > 0
}

func (c *Coordinator) indexLocked() int {
	if c.current == nil {
		return -1
	}
	for i, item := range c.playlist {
		if item.ID == c.current.ID {
			return i
		}
	}
	return -1
}

// SetPlaylist replaces the active playlist, e.g. when the page's list changed.
func (c *Coordinator) SetPlaylist(items []types.PlaylistItem) {
	c.mu.Lock()
	c.playlist = append([]types.PlaylistItem(nil), items...)
	c.mu.Unlock()
	c.publish()
}

// RefreshCurrentTrackURL replaces the cached audio of id after its content
// was regenerated. When id is current the engine source is hot-swapped.
func (c *Coordinator) RefreshCurrentTrackURL(id, url string) {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	old, ok := c.cache[id]
	if ok && old.url == url {
		c.mu.Unlock()
		return
	}
	c.cache[id] = cacheEntry{url: url}
	var swap *types.Track
	if c.current != nil && c.current.ID == id {
		c.current.Src = url
		c.current.Duration = 0
		t := *c.current
		swap = &t
	}
	c.addLogLocked("Audio refreshed for " + id)
	c.mu.Unlock()

	if ok {
		old.handle.Release()
	}
	if swap != nil {
		if c.transcripts != nil {
			c.transcripts.Invalidate(swap.Title)
		}
		c.engine.Swap(*swap)
	}
	c.publish()
}

// ClearGeneratingIfNotInList drops an in-flight generation whose briefing
// is no longer in ids, so the UI does not spin forever.
func (c *Coordinator) ClearGeneratingIfNotInList(ids []string) {
	c.mu.Lock()
	g := c.gen
	if g == nil || contains(ids, g.state.ID) {
		c.mu.Unlock()
		return
	}
	c.dropGenerationLocked(g)
	c.addLogLocked("Cleared stale generation for " + g.state.ID)
	c.mu.Unlock()

	log.Printf("🧹 Cleared stale generation for %s", g.state.ID)
	c.generationFinished(g, ErrGenerationCancelled)
	c.publish()
}

// SwitchUser changes the signed-in identity. Everything tied to the previous
// identity is wiped so its audio can never play for the new one.
func (c *Coordinator) SwitchUser(email string) {
	c.mu.Lock()
	same := c.user == email
	c.user = email
	c.mu.Unlock()
	if same {
		return
	}
	c.gw.SetUser(email)
	c.Reset()
	log.Printf("👤 Switched user, playback state reset")
}

// User returns the signed-in identity.
func (c *Coordinator) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Reset wipes the cache, current track, playlist and in-flight generation.
func (c *Coordinator) Reset() {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	var handles []*blob.Handle
	for _, e := range c.cache {
		if e.handle != nil {
			handles = append(handles, e.handle)
		}
	}
	c.cache = make(map[string]cacheEntry)
	g := c.gen
	if g != nil {
		c.dropGenerationLocked(g)
	}
	c.current = nil
	c.isPlaying = false
	c.playlist = nil
	c.notes = nil
	c.addLogLocked("State reset")
	c.mu.Unlock()

	for _, h := range handles {
		if err := h.Release(); err != nil {
			log.Printf("⚠️ Failed to release audio: %v", err)
		}
	}
	if g != nil {
		c.generationFinished(g, ErrGenerationCancelled)
	}
	if c.transcripts != nil {
		c.transcripts.Reset()
	}
	c.engine.Unload()
	c.publish()
}

// Current returns a copy of the current track.
func (c *Coordinator) Current() (types.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return types.Track{}, false
	}
	return *c.current, true
}

// IsPlaying returns the shared playing flag.
func (c *Coordinator) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isPlaying
}

// Cached returns the cached audio locator for id.
func (c *Coordinator) Cached(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[id]
	return e.url, ok
}

// Generating returns the in-flight generation, if any.
func (c *Coordinator) Generating() (types.GenerationState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == nil {
		return types.GenerationState{}, false
	}
	return c.gen.state, true
}

func (c *Coordinator) onEngineEvent(ev player.Event) {
	if ev.Type == player.EventTimeUpdate {
		return
	}

	c.mu.Lock()
	if c.current == nil || c.current.ID != ev.Track.ID || c.current.Src != ev.Track.Src {
		c.mu.Unlock()
		return
	}
	var ended *types.Track
	switch ev.Type {
	case player.EventStateChanged:
		if ev.State.Status != types.StatusLoading {
			c.isPlaying = ev.State.IsPlaying
		}
	case player.EventDurationKnown:
		c.current.Duration = ev.State.Duration
		if e, ok := c.cache[c.current.ID]; ok {
			e.duration = ev.State.Duration
			c.cache[c.current.ID] = e
		}
	case player.EventEnded:
		c.isPlaying = false
		t := *c.current
		ended = &t
	}
	c.mu.Unlock()

	if ended != nil {
		for _, h := range c.hooks {
			h.TrackEnded(*ended)
		}
	}
	c.publish()
}

func (c *Coordinator) cachedIDsLocked() []string {
	ids := make([]string, 0, len(c.cache))
	for id := range c.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
