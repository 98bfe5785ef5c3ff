// Package player is the playback engine: one output, one current track,
// transport controls and a stream of position events.
package player

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"briefcast/clock"
	"briefcast/config"
	"briefcast/types"
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Output Output
	Prober Prober
	Clock  clock.Clock
	Tick   time.Duration
}

// Engine owns one audio output. All controls are serialised on one mutex so
// the most recent call always determines the final state.
type Engine struct {
	out    Output
	prober Prober
	clock  clock.Clock
	tick   time.Duration

	mu       sync.Mutex
	track    types.Track
	status   types.PlaybackStatus
	base     float64   // position at anchor
	anchor   time.Time // when playback last (re)started
	duration float64
	rate     float64
	volume   float64
	loadSeq  int
	tickSeq  int
	ticker   clock.Timer
	ended    bool

	scrubbing  bool
	scrubPos   float64
	volDrag    bool
	volPreview float64

	subs listeners
}

// New creates an idle engine.
func New(opts Options) *Engine {
	if opts.Output == nil {
		opts.Output = SilentOutput{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Tick <= 0 {
		opts.Tick = config.PlayerTick
	}
	return &Engine{
		out:    opts.Output,
		prober: opts.Prober,
		clock:  opts.Clock,
		tick:   opts.Tick,
		status: types.StatusIdle,
		rate:   1,
		volume: config.DefaultVolume,
	}
}

// Subscribe registers fn for every engine event until unsubscribe is called.
// fn runs without engine locks held and may call back into the engine.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	return e.subs.add(fn)
}

// State returns the committed playback state.
func (e *Engine) State() types.PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Track returns the bound track, zero when idle.
func (e *Engine) Track() types.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.track
}

// Load binds track, resets the position to zero and starts playing.
// A refused start leaves the engine paused.
func (e *Engine) Load(track types.Track) {
	e.mu.Lock()
	evs := e.loadLocked(track, true)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Swap replaces the source of the current track, e.g. after the briefing was
// regenerated. The old position is meaningless for new content so it resets
// to zero; a playing engine keeps playing, a paused one stays paused.
func (e *Engine) Swap(track types.Track) {
	e.mu.Lock()
	wasPlaying := e.status == types.StatusPlaying || e.status == types.StatusLoading
	evs := e.loadLocked(track, wasPlaying)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Unload stops playback and returns to idle.
func (e *Engine) Unload() {
	e.mu.Lock()
	e.stopTickerLocked()
	e.stopOutputLocked()
	e.loadSeq++
	e.track = types.Track{}
	e.base, e.duration = 0, 0
	e.ended = false
	e.scrubbing, e.volDrag = false, false
	changed := e.status != types.StatusIdle
	e.status = types.StatusIdle
	var evs []Event
	if changed {
		evs = append(evs, e.eventLocked(EventStateChanged))
	}
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Play resumes a paused engine. An ended engine replays through loading.
func (e *Engine) Play() {
	e.mu.Lock()
	evs := e.playLocked()
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Pause stops audible playback and keeps the position.
func (e *Engine) Pause() {
	e.mu.Lock()
	evs := e.pauseLocked()
	e.mu.Unlock()
	e.subs.emit(evs)
}

// TogglePlay flips between playing and paused.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	var evs []Event
	if e.status == types.StatusPlaying {
		evs = e.pauseLocked()
	} else {
		evs = e.playLocked()
	}
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Seek moves to an absolute position clamped to [0, duration]. It does
// nothing while the duration is unknown.
func (e *Engine) Seek(position float64) {
	e.mu.Lock()
	evs := e.seekLocked(position)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// Skip seeks relative to the current position.
func (e *Engine) Skip(delta float64) {
	e.mu.Lock()
	evs := e.seekLocked(e.positionLocked() + delta)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// CyclePlaybackRate advances to the next rate in the fixed set, wrapping.
func (e *Engine) CyclePlaybackRate() float64 {
	e.mu.Lock()
	i := rateIndex(e.rate)
	next := config.PlaybackRates[(i+1)%len(config.PlaybackRates)]
	evs := e.setRateLocked(next)
	e.mu.Unlock()
	e.subs.emit(evs)
	return next
}

// SetPlaybackRate snaps r to the nearest supported rate.
func (e *Engine) SetPlaybackRate(r float64) float64 {
	snapped := config.PlaybackRates[rateIndex(r)]
	e.mu.Lock()
	evs := e.setRateLocked(snapped)
	e.mu.Unlock()
	e.subs.emit(evs)
	return snapped
}

// SetVolume sets the output volume clamped to [0, 1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	evs := e.setVolumeLocked(v)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// BeginScrub starts a drag on the position bar. Until CommitScrub the
// preview moves and the committed position does not.
func (e *Engine) BeginScrub() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrubbing = true
	e.scrubPos = e.positionLocked()
}

// Scrub moves the preview position.
func (e *Engine) Scrub(position float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.scrubbing {
		e.scrubbing = true
	}
	e.scrubPos = clamp(position, 0, e.duration)
}

// ScrubPreview returns the preview position while a drag is active.
func (e *Engine) ScrubPreview() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrubPos, e.scrubbing
}

// CommitScrub ends the drag with a single seek to the preview position.
func (e *Engine) CommitScrub() {
	e.mu.Lock()
	if !e.scrubbing {
		e.mu.Unlock()
		return
	}
	e.scrubbing = false
	evs := e.seekLocked(e.scrubPos)
	e.mu.Unlock()
	e.subs.emit(evs)
}

// CancelScrub drops the drag without seeking.
func (e *Engine) CancelScrub() {
	e.mu.Lock()
	e.scrubbing = false
	e.mu.Unlock()
}

// BeginVolumeDrag starts a drag on the volume control.
func (e *Engine) BeginVolumeDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volDrag = true
	e.volPreview = e.volume
}

// DragVolume moves the volume preview.
func (e *Engine) DragVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volDrag = true
	e.volPreview = clamp(v, 0, 1)
}

// VolumePreview returns the preview volume while a drag is active.
func (e *Engine) VolumePreview() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volPreview, e.volDrag
}

// CommitVolume applies the preview volume once.
func (e *Engine) CommitVolume() {
	e.mu.Lock()
	if !e.volDrag {
		e.mu.Unlock()
		return
	}
	e.volDrag = false
	evs := e.setVolumeLocked(e.volPreview)
	e.mu.Unlock()
	e.subs.emit(evs)
}

func (e *Engine) loadLocked(track types.Track, autoplay bool) []Event {
	e.stopTickerLocked()
	e.stopOutputLocked()
	e.loadSeq++
	e.track = track
	e.base = 0
	e.duration = 0
	e.ended = false
	e.scrubbing = false
	e.status = types.StatusLoading

	evs := []Event{e.eventLocked(EventStateChanged)}
	if track.Duration > 0 {
		e.duration = track.Duration
		evs = append(evs, e.eventLocked(EventDurationKnown))
	} else if e.prober != nil && track.Src != "" {
		go e.probe(e.loadSeq, track.Src)
	}

	if autoplay {
		return append(evs, e.startLocked()...)
	}
	e.status = types.StatusPaused
	return append(evs, e.eventLocked(EventStateChanged))
}

func (e *Engine) probe(seq int, src string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	d, err := e.prober.Duration(ctx, src)
	if err != nil {
		log.Printf("⚠️ Duration unknown for %s: %v", src, err)
		return
	}

	e.mu.Lock()
	if seq != e.loadSeq || e.duration > 0 {
		e.mu.Unlock()
		return
	}
	e.duration = d
	evs := []Event{e.eventLocked(EventDurationKnown)}
	e.mu.Unlock()
	e.subs.emit(evs)
}

// startLocked asks the output to play from the current base position.
func (e *Engine) startLocked() []Event {
	if err := e.out.Start(e.track.Src, e.base, e.rate, e.volume); err != nil {
		log.Printf("⚠️ Playback refused for %q: %v", e.track.Title, err)
		e.status = types.StatusPaused
		return []Event{e.eventLocked(EventStateChanged)}
	}
	e.status = types.StatusPlaying
	e.anchor = e.clock.Now()
	e.armTickerLocked()
	return []Event{e.eventLocked(EventStateChanged)}
}

func (e *Engine) playLocked() []Event {
	switch e.status {
	case types.StatusPaused:
		return e.startLocked()
	case types.StatusEnded:
		e.status = types.StatusLoading
		e.ended = false
		if e.base >= e.duration {
			e.base = 0
		}
		evs := []Event{e.eventLocked(EventStateChanged)}
		return append(evs, e.startLocked()...)
	}
	return nil
}

func (e *Engine) pauseLocked() []Event {
	if e.status != types.StatusPlaying {
		return nil
	}
	e.base = e.positionLocked()
	e.stopTickerLocked()
	e.stopOutputLocked()
	e.status = types.StatusPaused
	return []Event{e.eventLocked(EventStateChanged), e.eventLocked(EventTimeUpdate)}
}

func (e *Engine) seekLocked(position float64) []Event {
	if e.duration <= 0 {
		return nil
	}
	e.base = clamp(position, 0, e.duration)
	if e.status == types.StatusEnded && e.base < e.duration {
		e.ended = false
	}
	if e.status == types.StatusPlaying {
		return append([]Event{e.eventLocked(EventTimeUpdate)}, e.restartLocked()...)
	}
	return []Event{e.eventLocked(EventTimeUpdate)}
}

func (e *Engine) setRateLocked(r float64) []Event {
	if r == e.rate {
		return nil
	}
	if e.status == types.StatusPlaying {
		e.base = e.positionLocked()
		e.rate = r
		return append(e.restartLocked(), e.eventLocked(EventStateChanged))
	}
	e.rate = r
	return []Event{e.eventLocked(EventStateChanged)}
}

func (e *Engine) setVolumeLocked(v float64) []Event {
	v = clamp(v, 0, 1)
	if v == e.volume {
		return nil
	}
	e.volume = v
	if e.status == types.StatusPlaying {
		e.base = e.positionLocked()
		return append(e.restartLocked(), e.eventLocked(EventStateChanged))
	}
	return []Event{e.eventLocked(EventStateChanged)}
}

// restartLocked re-issues the output start after a seek or parameter change.
func (e *Engine) restartLocked() []Event {
	e.stopTickerLocked()
	e.stopOutputLocked()
	if err := e.out.Start(e.track.Src, e.base, e.rate, e.volume); err != nil {
		log.Printf("⚠️ Output restart failed for %q: %v", e.track.Title, err)
		e.status = types.StatusPaused
		return []Event{e.eventLocked(EventStateChanged)}
	}
	e.anchor = e.clock.Now()
	e.armTickerLocked()
	return nil
}

func (e *Engine) armTickerLocked() {
	e.tickSeq++
	seq := e.tickSeq
	e.ticker = e.clock.AfterFunc(e.tick, func() { e.onTick(seq) })
}

func (e *Engine) stopTickerLocked() {
	e.tickSeq++
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

func (e *Engine) stopOutputLocked() {
	if err := e.out.Stop(); err != nil {
		log.Printf("⚠️ Output stop failed: %v", err)
	}
}

func (e *Engine) onTick(seq int) {
	e.mu.Lock()
	if seq != e.tickSeq || e.status != types.StatusPlaying {
		e.mu.Unlock()
		return
	}

	var evs []Event
	pos := e.positionLocked()
	if e.duration > 0 && pos >= e.duration {
		e.base = e.duration
		e.ticker = nil
		e.stopOutputLocked()
		e.status = types.StatusEnded
		evs = append(evs, e.eventLocked(EventTimeUpdate))
		if !e.ended {
			e.ended = true
			evs = append(evs, e.eventLocked(EventEnded), e.eventLocked(EventStateChanged))
		}
	} else {
		evs = append(evs, e.eventLocked(EventTimeUpdate))
		e.armTickerLocked()
	}
	e.mu.Unlock()
	e.subs.emit(evs)
}

func (e *Engine) positionLocked() float64 {
	if e.status != types.StatusPlaying {
		return e.base
	}
	p := e.base + e.clock.Now().Sub(e.anchor).Seconds()*e.rate
	if e.duration > 0 && p > e.duration {
		p = e.duration
	}
	return p
}

func (e *Engine) stateLocked() types.PlaybackState {
	return types.PlaybackState{
		Status:       e.status,
		CurrentTime:  e.positionLocked(),
		Duration:     e.duration,
		IsPlaying:    e.status == types.StatusPlaying,
		PlaybackRate: e.rate,
		Volume:       e.volume,
	}
}

func (e *Engine) eventLocked(t EventType) Event {
	return Event{Type: t, Track: e.track, State: e.stateLocked()}
}

// rateIndex returns the index of the supported rate closest to r.
func rateIndex(r float64) int {
	best := 0
	for i, candidate := range config.PlaybackRates {
		if math.Abs(candidate-r) < math.Abs(config.PlaybackRates[best]-r) {
			best = i
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
