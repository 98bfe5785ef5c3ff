package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"briefcast/blob"
	"briefcast/clock"
	"briefcast/gateway"
	"briefcast/player"
	"briefcast/types"
)

type genResult struct {
	media *gateway.Media
	err   error
}

type fakeGateway struct {
	mu        sync.Mutex
	calls     int
	user      string
	ignoreCtx bool
	results   chan genResult
	progress  chan gateway.Progress // nil means no progress stream
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{results: make(chan genResult, 8)}
}

func (g *fakeGateway) Generate(ctx context.Context, src types.ContentSource, token string) (*gateway.Media, error) {
	g.mu.Lock()
	g.calls++
	ignore := g.ignoreCtx
	g.mu.Unlock()

	if ignore {
		r := <-g.results
		return r.media, r.err
	}
	select {
	case r := <-g.results:
		return r.media, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *fakeGateway) SubscribeProgress(ctx context.Context, token string) (<-chan gateway.Progress, error) {
	if g.progress == nil {
		return nil, errors.New("no progress stream")
	}
	out := make(chan gateway.Progress)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p := <-g.progress:
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (g *fakeGateway) SetUser(email string) {
	g.mu.Lock()
	g.user = email
	g.mu.Unlock()
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) succeed() {
	g.results <- genResult{media: &gateway.Media{Data: []byte("audio"), ContentType: "audio/mpeg", Duration: 30}}
}

type fakeBlobs struct {
	mu       sync.Mutex
	n        int
	released map[string]bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{released: make(map[string]bool)}
}

func (b *fakeBlobs) Create(ctx context.Context, name string, data []byte, contentType string) (*blob.Handle, error) {
	b.mu.Lock()
	b.n++
	url := fmt.Sprintf("mem://%s/%d", name, b.n)
	b.mu.Unlock()
	return blob.NewHandle(url, func() error {
		b.mu.Lock()
		b.released[url] = true
		b.mu.Unlock()
		return nil
	}), nil
}

func (b *fakeBlobs) isReleased(url string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released[url]
}

func (b *fakeBlobs) releasedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.released)
}

type hookCall struct {
	kind   string
	id     string
	cached bool
	err    error
}

type recordingHook struct {
	mu    sync.Mutex
	calls []hookCall
}

func (h *recordingHook) TrackStarted(t types.Track, cached bool) {
	h.add(hookCall{kind: "started", id: t.ID, cached: cached})
}

func (h *recordingHook) TrackEnded(t types.Track) {
	h.add(hookCall{kind: "ended", id: t.ID})
}

func (h *recordingHook) GenerationFinished(g types.GenerationState, took time.Duration, err error) {
	h.add(hookCall{kind: "generation", id: g.ID, err: err})
}

func (h *recordingHook) add(c hookCall) {
	h.mu.Lock()
	h.calls = append(h.calls, c)
	h.mu.Unlock()
}

func (h *recordingHook) snapshot() []hookCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]hookCall(nil), h.calls...)
}

type refusingOutput struct{}

func (refusingOutput) Start(string, float64, float64, float64) error {
	return errors.New("autoplay blocked")
}
func (refusingOutput) Stop() error { return nil }

type harness struct {
	c      *Coordinator
	gw     *fakeGateway
	blobs  *fakeBlobs
	clk    *clock.Fake
	engine *player.Engine
	hook   *recordingHook
}

func newHarness(t *testing.T, out player.Output) *harness {
	t.Helper()
	if out == nil {
		out = player.SilentOutput{}
	}
	h := &harness{
		gw:    newFakeGateway(),
		blobs: newFakeBlobs(),
		clk:   clock.NewFake(time.Unix(1700000000, 0)),
		hook:  &recordingHook{},
	}
	h.engine = player.New(player.Options{Output: out, Clock: clock.NewFake(time.Unix(0, 0))})
	h.c = New(Options{
		Gateway: h.gw,
		Engine:  h.engine,
		Blobs:   h.blobs,
		Clock:   h.clk,
		Hooks:   []Hook{h.hook},
		Timeout: 90 * time.Second,
		Tick:    100 * time.Millisecond,
		User:    "ana@example.com",
	})
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func textSource(s string) types.ContentSource {
	return types.ContentSource{Kind: types.SourceText, Text: s}
}
