package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"briefcast/blob"
	"briefcast/clock"
	"briefcast/coordinator"
	"briefcast/gateway"
	"briefcast/player"
	"briefcast/slideshow"
	"briefcast/transcript"
	"briefcast/types"
)

const table = `transcripts:
  - title: Rates
    segments:
      - start: 0
        end: 7.2
        text: The Federal Reserve raised interest rates.
      - start: 7.2
        end: 15
        text: Markets reacted calmly.
`

type stubGateway struct{}

func (stubGateway) Generate(context.Context, types.ContentSource, string) (*gateway.Media, error) {
	return &gateway.Media{Data: []byte("ID3"), ContentType: "audio/mpeg"}, nil
}

func (stubGateway) SubscribeProgress(context.Context, string) (<-chan gateway.Progress, error) {
	ch := make(chan gateway.Progress)
	close(ch)
	return ch, nil
}

func (stubGateway) SetUser(string) {}

type fakeStudio struct {
	invalidated int
	premium     bool
}

func (f *fakeStudio) InvalidateBriefing(context.Context) error {
	f.invalidated++
	return nil
}

func (f *fakeStudio) GenerateVideo(_ context.Context, title, _, _ string) (*gateway.Media, error) {
	if !f.premium {
		return nil, &gateway.APIError{Op: "generate video", Status: 403}
	}
	return &gateway.Media{Data: []byte("video of " + title), ContentType: "video/mp4"}, nil
}

func (f *fakeStudio) SetPremium(p bool) { f.premium = p }

type stubImages struct{}

func (stubImages) SearchImage(_ context.Context, q string) (string, error) {
	return "https://img.example.com/" + q, nil
}

type fixedProber float64

func (p fixedProber) Duration(context.Context, string) (float64, error) { return float64(p), nil }

type fixture struct {
	s      *Session
	clk    *clock.Fake
	studio *fakeStudio
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	static, err := transcript.Parse([]byte(table))
	if err != nil {
		t.Fatal(err)
	}
	blobs, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewFake(time.Unix(0, 0))
	engine := player.New(player.Options{Clock: clk, Prober: fixedProber(15)})
	resolver := transcript.NewResolver(static, nil, nil)
	studio := &fakeStudio{}
	coord := coordinator.New(coordinator.Options{
		Gateway: stubGateway{},
		Engine:  engine,
		Blobs:   blobs,
		Clock:   clock.NewFake(time.Unix(0, 0)),
	})
	s := New(Options{
		Coordinator: coord,
		Engine:      engine,
		Transcripts: resolver,
		Slides: slideshow.New(slideshow.Options{
			Transcripts: resolver,
			Images:      stubImages{},
			Clock:       clk,
		}),
		Studio: studio,
		Blobs:  blobs,
	})
	t.Cleanup(s.Close)
	return &fixture{s: s, clk: clk, studio: studio}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPanelAndSlideshowFollowPlayback(t *testing.T) {
	f := newFixture(t)
	if err := f.s.Coordinator().Play("bookmark-1", "file:///tmp/rates.mp3", "Rates", nil); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "duration", func() bool { return f.s.Engine().State().Duration == 15 })

	f.clk.Advance(time.Second)
	v := f.s.View()
	if v.Current == nil || v.Current.ID != "bookmark-1" || v.Playback.Status != types.StatusPlaying {
		t.Fatalf("view = %+v", v)
	}
	if len(v.Lines) != 2 || v.ActiveLine != 0 || v.ScrollTarget != 0 {
		t.Fatalf("lines = %+v active=%d", v.Lines, v.ActiveLine)
	}
	if v.Slide.Syncing || v.Slide.Query == "" || v.Slide.ImageURL != "https://img.example.com/"+v.Slide.Query {
		t.Fatalf("slide = %+v", v.Slide)
	}

	if err := f.s.ClickLine(1); err != nil {
		t.Fatal(err)
	}
	v = f.s.View()
	if v.ActiveLine != 1 || v.Lines[0].State.String() != "past" {
		t.Fatalf("after click: active=%d lines=%+v", v.ActiveLine, v.Lines)
	}
}

func TestUnknownTitleShowsSyncing(t *testing.T) {
	f := newFixture(t)
	if err := f.s.Coordinator().Play("x", "file:///tmp/x.mp3", "Untitled", nil); err != nil {
		t.Fatal(err)
	}
	f.clk.Advance(500 * time.Millisecond)
	v := f.s.View()
	if len(v.Lines) != 0 || !v.Slide.Syncing {
		t.Fatalf("view = %+v", v)
	}
}

func TestSwitchUserClearsView(t *testing.T) {
	f := newFixture(t)
	if err := f.s.Coordinator().Play("bookmark-1", "file:///tmp/rates.mp3", "Rates", nil); err != nil {
		t.Fatal(err)
	}
	f.clk.Advance(time.Second)

	if err := f.s.SwitchUser(context.Background(), "ben@example.com"); err != nil {
		t.Fatal(err)
	}
	v := f.s.View()
	if v.Current != nil || len(v.Lines) != 0 || v.Slide.TrackID != "" || v.User != "ben@example.com" {
		t.Fatalf("view = %+v", v)
	}
}

func TestGenerateTodayPlaysResult(t *testing.T) {
	f := newFixture(t)
	if err := f.s.GenerateToday(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "briefing", func() bool {
		cur, ok := f.s.Coordinator().Current()
		return ok && cur.ID == "todays-briefing"
	})
	if len(f.s.Playlist()) != 0 {
		t.Fatalf("playlist without library = %+v", f.s.Playlist())
	}
}

func TestRegenerateTodayInvalidatesFirst(t *testing.T) {
	f := newFixture(t)
	if err := f.s.RegenerateToday(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.studio.invalidated != 1 {
		t.Fatalf("invalidated %d times", f.studio.invalidated)
	}
	waitFor(t, "briefing", func() bool {
		cur, ok := f.s.Coordinator().Current()
		return ok && cur.ID == "todays-briefing"
	})
}

func TestRenderVideoNeedsPremiumAndIsReleasedOnSwitch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.s.RenderVideo(ctx, "Rates", "Rates held."); !errors.Is(err, gateway.ErrPremiumRequired) {
		t.Fatalf("err = %v, want premium required", err)
	}

	if err := f.s.SetPremium(true); err != nil {
		t.Fatal(err)
	}
	h, err := f.s.RenderVideo(ctx, "Rates", "Rates held.")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(h.URL, ".mp4") || h.Released() {
		t.Fatalf("handle = %q released=%v", h.URL, h.Released())
	}

	if err := f.s.SwitchUser(ctx, "ben@example.com"); err != nil {
		t.Fatal(err)
	}
	if !h.Released() {
		t.Fatal("video survived user switch")
	}
	if _, err := os.Stat(strings.TrimPrefix(h.URL, "file://")); !os.IsNotExist(err) {
		t.Fatalf("video file still present: %v", err)
	}
}

func TestStudioMissing(t *testing.T) {
	f := newFixture(t)
	f.s.studio = nil
	if err := f.s.RegenerateToday(context.Background()); !errors.Is(err, ErrNoStudio) {
		t.Fatalf("err = %v", err)
	}
}
