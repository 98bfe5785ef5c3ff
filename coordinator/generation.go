package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"briefcast/blob"
	"briefcast/clock"
	"briefcast/config"
	"briefcast/gateway"
	"briefcast/types"
)

// generation is the one in-flight request. Once cancelled is set, nothing
// it produces may touch coordinator state.
type generation struct {
	state     types.GenerationState
	source    types.ContentSource
	token     string
	real      int // highest progress reported by the service
	cancelled bool
	cancel    context.CancelFunc
	deadline  clock.Timer
	ticker    clock.Timer
}

// RequestGeneration synthesises audio for id. While any generation is in
// flight the call is rejected with ErrGenerationInFlight and nothing changes.
// The outcome arrives asynchronously: on success the track becomes current
// and plays, on failure or timeout a notification is raised.
func (c *Coordinator) RequestGeneration(id, title string, src types.ContentSource) error {
	if src.IsZero() {
		return ErrNoSource
	}

	c.mu.Lock()
	if c.gen != nil {
		inFlight := c.gen.state.ID
		c.mu.Unlock()
		log.Printf("⏳ Generation for %s rejected, %s still in flight", id, inFlight)
		return ErrGenerationInFlight
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &generation{
		state:  types.GenerationState{ID: id, Title: title, StartedAt: c.clock.Now()},
		source: src,
		token:  gateway.NewProgressToken(),
		cancel: cancel,
	}
	c.gen = g
	g.deadline = c.clock.AfterFunc(c.timeout, func() { c.expire(g) })
	g.ticker = c.clock.AfterFunc(c.tick, func() { c.advance(g) })
	c.addLogLocked("Generating " + title)
	c.mu.Unlock()

	log.Printf("🎙️ Generating %q (%s)", title, src.Kind)
	c.publish()

	go c.watchProgress(ctx, g)
	go c.run(ctx, g)
	return nil
}

func (c *Coordinator) run(ctx context.Context, g *generation) {
	media, err := c.gw.Generate(ctx, g.source, g.token)
	if err != nil {
		c.fail(g, err)
		return
	}

	h, err := c.blobs.Create(ctx, g.state.ID, media.Data, media.ContentType)
	if err != nil {
		c.fail(g, fmt.Errorf("failed to store audio: %w", err))
		return
	}
	c.succeed(g, h, media.Duration)
}

func (c *Coordinator) watchProgress(ctx context.Context, g *generation) {
	ch, err := c.gw.SubscribeProgress(ctx, g.token)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("⚠️ Progress stream unavailable, using simulated progress: %v", err)
		}
		return
	}
	for p := range ch {
		if p.Error != "" {
			c.fail(g, fmt.Errorf("generation failed: %s", p.Error))
			return
		}
		c.mu.Lock()
		if c.gen == g && !g.cancelled && p.Progress > g.real {
			g.real = min(p.Progress, 99)
		}
		c.mu.Unlock()
	}
}

// advance moves the displayed progress one tick: toward the real value when
// the service is ahead, otherwise a slow creep that stops at the cap.
func (c *Coordinator) advance(g *generation) {
	c.mu.Lock()
	if c.gen != g || g.cancelled {
		c.mu.Unlock()
		return
	}
	shown := g.state.Progress
	switch {
	case g.real > shown:
		shown += max(1, (g.real-shown+1)/2)
	case shown < config.SimulatedProgressCap:
		shown++
	}
	changed := shown != g.state.Progress
	g.state.Progress = shown
	g.ticker = c.clock.AfterFunc(c.tick, func() { c.advance(g) })
	c.mu.Unlock()

	if changed {
		c.publish()
	}
}

func (c *Coordinator) expire(g *generation) {
	c.mu.Lock()
	if c.gen != g || g.cancelled {
		c.mu.Unlock()
		return
	}
	c.dropGenerationLocked(g)
	c.notifyLocked(types.LevelError, "Generating \""+g.state.Title+"\" took too long. Please try again.")
	c.addLogLocked("Generation timed out for " + g.state.ID)
	c.mu.Unlock()

	log.Printf("❌ Generation for %s timed out after %s", g.state.ID, c.timeout)
	c.generationFinished(g, ErrGenerationTimeout)
	c.publish()
}

func (c *Coordinator) fail(g *generation, err error) {
	c.mu.Lock()
	if c.gen != g || g.cancelled {
		c.mu.Unlock()
		return
	}
	c.dropGenerationLocked(g)
	c.notifyLocked(types.LevelError, gateway.UserMessage(err))
	c.addLogLocked("Error: " + err.Error())
	c.mu.Unlock()

	log.Printf("❌ Generation for %s failed: %v", g.state.ID, err)
	c.generationFinished(g, err)
	c.publish()
}

func (c *Coordinator) succeed(g *generation, h *blob.Handle, duration float64) {
	c.playMu.Lock()
	defer c.playMu.Unlock()

	c.mu.Lock()
	if c.gen != g || g.cancelled {
		c.mu.Unlock()
		log.Printf("🗑️ Discarding late audio for %s", g.state.ID)
		h.Release()
		return
	}
	g.state.Progress = 100
	done := g.state
	c.dropGenerationLocked(g)

	old, hadOld := c.cache[done.ID]
	c.cache[done.ID] = cacheEntry{url: h.URL, handle: h, duration: duration}
	track := types.Track{ID: done.ID, Src: h.URL, Title: done.Title, Duration: duration}
	c.current = &track
	c.isPlaying = true
	c.addLogLocked("Generated " + done.Title)
	c.mu.Unlock()

	if hadOld && old.url != h.URL {
		old.handle.Release()
	}
	log.Printf("✅ Generated %q in %s", done.Title, c.clock.Now().Sub(done.StartedAt).Round(time.Millisecond))
	for _, hk := range c.hooks {
		hk.GenerationFinished(done, c.clock.Now().Sub(done.StartedAt), nil)
	}
	c.publishGeneration(done)

	c.engine.Load(track)
	for _, hk := range c.hooks {
		hk.TrackStarted(track, false)
	}
	c.publish()

	if c.transcripts != nil {
		go c.prepareTranscript(done, g.source)
	}
}

func (c *Coordinator) prepareTranscript(gen types.GenerationState, src types.ContentSource) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ArticleFetchTimeout)
	defer cancel()
	if err := c.transcripts.Prepare(ctx, gen.ID, gen.Title, src); err != nil {
		log.Printf("⚠️ Transcript unavailable for %q: %v", gen.Title, err)
	}
}

// dropGenerationLocked marks g cancelled and clears it. Late results from
// its goroutines are ignored from here on.
func (c *Coordinator) dropGenerationLocked(g *generation) {
	g.cancelled = true
	g.cancel()
	if g.deadline != nil {
		g.deadline.Stop()
	}
	if g.ticker != nil {
		g.ticker.Stop()
	}
	if c.gen == g {
		c.gen = nil
	}
}

func (c *Coordinator) generationFinished(g *generation, err error) {
	c.mu.Lock()
	state := g.state
	c.mu.Unlock()
	took := c.clock.Now().Sub(state.StartedAt)
	for _, h := range c.hooks {
		h.GenerationFinished(state, took, err)
	}
}

// IsCancellation reports whether err only means a generation was superseded.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrGenerationCancelled) || errors.Is(err, context.Canceled)
}
