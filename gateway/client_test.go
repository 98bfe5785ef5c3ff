package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"briefcast/types"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL + "/", Retries: 2, UserEmail: "ana@example.com"})
	c.backoff = time.Millisecond
	return c
}

func TestGeneratePodcastSendsHeadersAndReadsMedia(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/podcast/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-User-Email"); got != "ana@example.com" {
			t.Errorf("X-User-Email = %q", got)
		}
		if got := r.Header.Get("X-Progress-Token"); got != "tok-1" {
			t.Errorf("X-Progress-Token = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["text"] != "hello world" {
			t.Errorf("body = %v, err = %v", body, err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("X-Duration-Seconds", "42.5")
		w.Write([]byte("ID3audio"))
	}))

	m, err := c.GeneratePodcast(context.Background(), "hello world", "tok-1")
	if err != nil {
		t.Fatalf("GeneratePodcast: %v", err)
	}
	if string(m.Data) != "ID3audio" || m.ContentType != "audio/mpeg" || m.Duration != 42.5 || m.Cached {
		t.Fatalf("unexpected media %+v", m)
	}
}

func TestGenerateDispatchesOnSourceKind(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/briefing/generate" {
			w.Header().Set("X-Cached", "true")
		}
		w.Write([]byte("a"))
	}))

	ctx := context.Background()
	sources := []types.ContentSource{
		{Kind: types.SourceText, Text: "x"},
		{Kind: types.SourceURLs, URLs: []string{"https://example.com/a"}},
		{Kind: types.SourcePersonal},
	}
	for _, src := range sources {
		if _, err := c.Generate(ctx, src, ""); err != nil {
			t.Fatalf("Generate(%s): %v", src.Kind, err)
		}
	}
	want := []string{"/podcast/generate", "/podcast/generate-from-urls", "/briefing/generate"}
	mu.Lock()
	defer mu.Unlock()
	if fmt.Sprint(paths) != fmt.Sprint(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	if _, err := c.Generate(ctx, types.ContentSource{Kind: "video"}, ""); err == nil {
		t.Fatal("expected error for unknown source kind")
	}
}

func TestGenerationIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))

	_, err := c.GeneratePodcast(context.Background(), "x", "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
}

func TestGetRetriesUnavailable(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"transcript": "Hello there."})
	}))

	text, err := c.BriefingTranscript(context.Background())
	if err != nil {
		t.Fatalf("BriefingTranscript: %v", err)
	}
	if text != "Hello there." {
		t.Fatalf("text = %q", text)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("calls = %d, want 3", n)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrPremiumRequired},
		{http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			c.retries = 0
			_, err := c.BriefingTranscript(context.Background())
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("err = %v, want %v", err, tt.sentinel)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status || apiErr.Body != "nope" {
				t.Fatalf("APIError = %+v", apiErr)
			}
			if apiErr.NotFound() != (tt.status == http.StatusNotFound) {
				t.Fatalf("NotFound() = %v", apiErr.NotFound())
			}
			if UserMessage(err) == "" {
				t.Fatal("empty user message")
			}
		})
	}
}

func TestGenerateVideoPremiumHeader(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Premium") != "true" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("mp4"))
	}))

	if _, err := c.GenerateVideo(context.Background(), "t", "s", ""); !errors.Is(err, ErrPremiumRequired) {
		t.Fatalf("err = %v, want ErrPremiumRequired", err)
	}
	c.SetPremium(true)
	m, err := c.GenerateVideo(context.Background(), "t", "s", "")
	if err != nil {
		t.Fatalf("GenerateVideo: %v", err)
	}
	if m.ContentType != "video/mp4" {
		t.Fatalf("content type = %q", m.ContentType)
	}
}

func TestSetUserChangesIdentityHeader(t *testing.T) {
	seen := make(chan string, 1)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("X-User-Email")
		w.Write([]byte(`{"briefings":[{"id":3,"title":"Latest","url":"https://example.com"}]}`))
	}))

	c.SetUser("  bo@example.com ")
	got, err := c.Briefings(context.Background())
	if err != nil {
		t.Fatalf("Briefings: %v", err)
	}
	if got := <-seen; got != "bo@example.com" || c.User() != "bo@example.com" {
		t.Fatalf("identity = %q / %q", got, c.User())
	}
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("briefings = %+v", got)
	}
}

func TestBookmarks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bookmarks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":2,"title":"B"},{"id":1,"title":"A"}]`))
		case http.MethodPost:
			var b Bookmark
			json.NewDecoder(r.Body).Decode(&b)
			b.ID = 9
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(b)
		}
	})
	mux.HandleFunc("/bookmarks/9", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.Write([]byte(`{"deleted":true}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	list, err := c.Bookmarks(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("Bookmarks = %v, %v", list, err)
	}
	added, err := c.AddBookmark(ctx, Bookmark{Title: "New"})
	if err != nil || added.ID != 9 || added.Title != "New" {
		t.Fatalf("AddBookmark = %+v, %v", added, err)
	}
	if err := c.DeleteBookmark(ctx, 9); err != nil {
		t.Fatalf("DeleteBookmark: %v", err)
	}
}

func TestSearchImageEscapesQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "interest federal & co" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(`{"url":"https://img.example.com/1.jpg"}`))
	}))

	u, err := c.SearchImage(context.Background(), "interest federal & co")
	if err != nil || u != "https://img.example.com/1.jpg" {
		t.Fatalf("SearchImage = %q, %v", u, err)
	}
}
