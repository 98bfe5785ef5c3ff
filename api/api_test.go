package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"briefcast/blob"
	"briefcast/clock"
	"briefcast/coordinator"
	"briefcast/gateway"
	"briefcast/history"
	"briefcast/player"
	"briefcast/session"
	"briefcast/slideshow"
	"briefcast/transcript"
	"briefcast/types"

	"github.com/gin-gonic/gin"
)

const table = `transcripts:
  - title: Rates
    segments:
      - start: 0
        end: 5
        text: Rates held steady.
      - start: 5
        end: 10
        text: Stocks rose.
`

// blockingGateway holds every generation until release is closed.
type blockingGateway struct {
	release chan struct{}
}

func (g *blockingGateway) Generate(ctx context.Context, _ types.ContentSource, _ string) (*gateway.Media, error) {
	select {
	case <-g.release:
		return &gateway.Media{Data: []byte("ID3"), ContentType: "audio/mpeg"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *blockingGateway) SubscribeProgress(context.Context, string) (<-chan gateway.Progress, error) {
	ch := make(chan gateway.Progress)
	close(ch)
	return ch, nil
}

func (g *blockingGateway) SetUser(string) {}

type noImages struct{}

func (noImages) SearchImage(context.Context, string) (string, error) { return "", nil }

type fixedProber float64

func (p fixedProber) Duration(context.Context, string) (float64, error) { return float64(p), nil }

type stubHistory struct{ limit int }

func (h *stubHistory) Recent(n int) ([]history.Play, error) {
	h.limit = n
	return []history.Play{{TrackID: "bookmark-1", Title: "Rates"}}, nil
}

type fixture struct {
	router  *gin.Engine
	gw      *blockingGateway
	session *session.Session
	history *stubHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	static, err := transcript.Parse([]byte(table))
	if err != nil {
		t.Fatal(err)
	}
	blobs, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewFake(time.Unix(0, 0))
	engine := player.New(player.Options{Clock: clk, Prober: fixedProber(10)})
	gw := &blockingGateway{release: make(chan struct{})}
	resolver := transcript.NewResolver(static, nil, nil)
	s := session.New(session.Options{
		Coordinator: coordinator.New(coordinator.Options{
			Gateway: gw,
			Engine:  engine,
			Blobs:   blobs,
			Clock:   clock.NewFake(time.Unix(0, 0)),
		}),
		Engine:      engine,
		Transcripts: resolver,
		Slides:      slideshow.New(slideshow.Options{Transcripts: resolver, Images: noImages{}, Clock: clk}),
	})
	t.Cleanup(func() {
		select {
		case <-gw.release:
		default:
			close(gw.release)
		}
		s.Close()
	})

	h := &stubHistory{}
	srv := NewServer(Options{
		Session: s,
		History: h,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok_total 1\n")) }),
	})
	return &fixture{router: srv.NewRouter(), gw: gw, session: s, history: h}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
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

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	if rec := f.do("GET", "/api/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
	if rec := f.do("GET", "/metrics", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok_total 1\n" {
		t.Fatalf("metrics = %d %q", rec.Code, rec.Body.String())
	}
}

func TestPlayAndTransport(t *testing.T) {
	f := newFixture(t)

	rec := f.do("POST", "/api/play", PlayRequest{ID: "bookmark-1", URL: "file:///tmp/rates.mp3", Title: "Rates"})
	if rec.Code != http.StatusOK {
		t.Fatalf("play = %d %s", rec.Code, rec.Body)
	}
	var view session.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Current == nil || view.Current.ID != "bookmark-1" || !view.IsPlaying {
		t.Fatalf("view = %+v", view)
	}
	waitFor(t, "duration", func() bool { return f.session.Engine().State().Duration == 10 })

	if rec := f.do("POST", "/api/seek", map[string]any{"position": 99}); rec.Code != http.StatusOK {
		t.Fatalf("seek = %d", rec.Code)
	}
	if got := f.session.Engine().State().CurrentTime; got != 10 {
		t.Fatalf("seek clamp: %v", got)
	}
	if rec := f.do("POST", "/api/seek", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("seek without position = %d", rec.Code)
	}

	f.do("POST", "/api/seek", map[string]any{"position": 4})
	f.do("POST", "/api/skip", map[string]any{"delta": -10})
	if got := f.session.Engine().State().CurrentTime; got != 0 {
		t.Fatalf("skip clamp: %v", got)
	}

	if rec := f.do("POST", "/api/pause", nil); rec.Code != http.StatusOK {
		t.Fatalf("pause = %d", rec.Code)
	}
	if f.session.Coordinator().IsPlaying() {
		t.Fatal("still playing after pause")
	}
	f.do("POST", "/api/toggle", nil)
	if !f.session.Coordinator().IsPlaying() {
		t.Fatal("toggle did not resume")
	}

	rec = f.do("POST", "/api/rate", nil)
	var rate struct {
		PlaybackRate float64 `json:"playback_rate"`
	}
	json.Unmarshal(rec.Body.Bytes(), &rate)
	if rec.Code != http.StatusOK || rate.PlaybackRate == 1 {
		t.Fatalf("rate = %d %+v", rec.Code, rate)
	}
}

func TestPlayUncachedIsNotFound(t *testing.T) {
	f := newFixture(t)
	if rec := f.do("POST", "/api/play", PlayRequest{ID: "nothing"}); rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec := f.do("POST", "/api/play", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id = %d", rec.Code)
	}
}

func TestGenerateConflict(t *testing.T) {
	f := newFixture(t)

	rec := f.do("POST", "/api/generate", GenerateRequest{ID: "todays-briefing", Title: "Today", Personal: true})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first = %d %s", rec.Code, rec.Body)
	}
	rec = f.do("POST", "/api/generate", GenerateRequest{ID: "other", Title: "Other", Text: "Some text."})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second = %d", rec.Code)
	}
	if rec := f.do("POST", "/api/generate", GenerateRequest{ID: "x", Title: "X"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("no source = %d", rec.Code)
	}

	close(f.gw.release)
	waitFor(t, "generated track", func() bool {
		cur, ok := f.session.Coordinator().Current()
		return ok && cur.ID == "todays-briefing"
	})
	if rec := f.do("POST", "/api/generate", GenerateRequest{ID: "other", Title: "Other", Text: "Some text."}); rec.Code != http.StatusAccepted {
		t.Fatalf("after finish = %d", rec.Code)
	}
}

func TestTranscriptRoutes(t *testing.T) {
	f := newFixture(t)
	f.do("POST", "/api/play", PlayRequest{ID: "bookmark-1", URL: "file:///tmp/rates.mp3", Title: "Rates"})
	waitFor(t, "duration", func() bool { return f.session.Engine().State().Duration == 10 })

	rec := f.do("POST", "/api/transcript/1/seek", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seek line = %d", rec.Code)
	}
	rec = f.do("GET", "/api/transcript", nil)
	var body struct {
		TrackID    string `json:"track_id"`
		ActiveLine int    `json:"active_line"`
		Lines      []struct {
			State string `json:"state"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.TrackID != "bookmark-1" || body.ActiveLine != 1 || len(body.Lines) != 2 || body.Lines[0].State != "past" {
		t.Fatalf("transcript = %+v", body)
	}

	if rec := f.do("POST", "/api/transcript/7/seek", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("bad line = %d", rec.Code)
	}
	if rec := f.do("POST", "/api/transcript/x/seek", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric line = %d", rec.Code)
	}
}

func TestHistoryAndUser(t *testing.T) {
	f := newFixture(t)
	if rec := f.do("GET", "/api/history?limit=5", nil); rec.Code != http.StatusOK || f.history.limit != 5 {
		t.Fatalf("history = %d limit=%d", rec.Code, f.history.limit)
	}
	if rec := f.do("POST", "/api/user", UserRequest{Email: "not-an-email"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email = %d", rec.Code)
	}
	if rec := f.do("POST", "/api/user", UserRequest{Email: "ben@example.com"}); rec.Code != http.StatusOK {
		t.Fatalf("user = %d", rec.Code)
	}
	if got := f.session.Coordinator().User(); got != "ben@example.com" {
		t.Fatalf("user = %q", got)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{coordinator.ErrGenerationInFlight, http.StatusConflict},
		{coordinator.ErrNotCached, http.StatusNotFound},
		{coordinator.ErrNoSource, http.StatusBadRequest},
		{&gateway.APIError{Op: "video", Status: http.StatusForbidden}, http.StatusForbidden},
		{session.ErrNoStudio, http.StatusNotImplemented},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondError(c, tt.err)
		if rec.Code != tt.want {
			t.Errorf("%v → %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestStudioRoutesWithoutStudio(t *testing.T) {
	f := newFixture(t)
	if rec := f.do("POST", "/api/regenerate", nil); rec.Code != http.StatusNotImplemented {
		t.Fatalf("regenerate = %d", rec.Code)
	}
	if rec := f.do("PUT", "/api/premium", map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("premium without value = %d", rec.Code)
	}
	if rec := f.do("POST", "/api/video", VideoRequest{Title: "Rates", Summary: "Rates held."}); rec.Code != http.StatusNotImplemented {
		t.Fatalf("video = %d", rec.Code)
	}
}
