package transcript

import (
	"context"
	"errors"
	"testing"

	"briefcast/types"
)

type fakePersonal struct {
	text  string
	err   error
	calls int
}

func (f *fakePersonal) BriefingTranscript(ctx context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

type notFoundErr struct{}

func (notFoundErr) Error() string  { return "not found" }
func (notFoundErr) NotFound() bool { return true }

type fakeArticles map[string]string

func (f fakeArticles) FetchText(ctx context.Context, u string) (string, error) {
	text, ok := f[u]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return text, nil
}

func TestResolverPrefersStaticTable(t *testing.T) {
	static, _ := Builtin()
	personal := &fakePersonal{text: "Something else entirely."}
	r := NewResolver(static, personal, nil)

	if err := r.Prepare(context.Background(), "todays-briefing", "Daily Briefing", types.ContentSource{Kind: types.SourcePersonal}); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if personal.calls != 0 {
		t.Fatalf("remote fetched although static transcript exists")
	}
}

func TestResolverPreparesPersonalTranscript(t *testing.T) {
	personal := &fakePersonal{text: "Hello there. General news follows."}
	r := NewResolver(nil, personal, nil)

	if _, ok := r.GetTranscriptForTrack("Today's Briefing"); ok {
		t.Fatal("transcript known before Prepare")
	}
	if err := r.Prepare(context.Background(), "todays-briefing", "Today's Briefing", types.ContentSource{}); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	tr, ok := r.GetTranscriptForTrack("Today's Briefing")
	if !ok || len(tr) != 2 {
		t.Fatalf("expected 2 prepared segments, got %v (ok=%v)", tr, ok)
	}

	r.Invalidate("Today's Briefing")
	if _, ok := r.GetTranscriptForTrack("Today's Briefing"); ok {
		t.Fatal("transcript survived Invalidate")
	}
}

func TestResolverMissingPersonalTranscriptIsNotAnError(t *testing.T) {
	r := NewResolver(nil, &fakePersonal{err: notFoundErr{}}, nil)
	if err := r.Prepare(context.Background(), "combined-briefing", "Combined", types.ContentSource{}); err != nil {
		t.Fatalf("expected nil error for missing transcript, got %v", err)
	}
	if _, ok := r.GetTranscriptForTrack("Combined"); ok {
		t.Fatal("unexpected transcript")
	}
}

func TestResolverArticlesSkipFailures(t *testing.T) {
	articles := fakeArticles{"https://a.example": "Article one text."}
	r := NewResolver(nil, nil, articles)

	src := types.ContentSource{Kind: types.SourceURLs, URLs: []string{"https://a.example", "https://broken.example"}}
	if err := r.Prepare(context.Background(), "bookmark-1", "Saved", src); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	tr, ok := r.GetTranscriptForTrack("Saved")
	if !ok || tr.Text() != "Article one text." {
		t.Fatalf("unexpected transcript %v", tr)
	}
}

func TestResolverTextSource(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	src := types.ContentSource{Kind: types.SourceText, Text: "A short script. With two sentences."}
	if err := r.Prepare(context.Background(), "custom", "Custom", src); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if tr, ok := r.GetTranscriptForTrack("Custom"); !ok || len(tr) != 2 {
		t.Fatalf("unexpected transcript %v", tr)
	}
}
