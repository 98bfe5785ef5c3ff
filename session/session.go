// Package session wires one listener's playback together: the coordinator
// decides what plays, and the transcript panel and slideshow follow the
// engine's position.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"briefcast/blob"
	"briefcast/config"
	"briefcast/coordinator"
	"briefcast/library"
	"briefcast/lyrics"
	"briefcast/player"
	"briefcast/slideshow"
	"briefcast/types"
)

// Transcripts looks up transcripts by track title.
type Transcripts interface {
	GetTranscriptForTrack(title string) (types.Transcript, bool)
	Invalidate(title string)
}

// Options wires a Session. Library and Studio are optional; Blobs is
// required with Studio.
type Options struct {
	Coordinator *coordinator.Coordinator
	Engine      *player.Engine
	Transcripts Transcripts
	Slides      *slideshow.Deriver
	Library     *library.Library
	Studio      Studio
	Blobs       blob.Store
}

// Session is the state a player UI renders.
type Session struct {
	coord       *coordinator.Coordinator
	engine      *player.Engine
	transcripts Transcripts
	slides      *slideshow.Deriver
	library     *library.Library
	studio      Studio
	blobs       blob.Store
	panel       *lyrics.Panel

	mu      sync.Mutex
	trackID string
	bound   bool // panel holds the transcript of trackID
	videos  *blob.Scope
	unsub   func()
}

func New(opts Options) *Session {
	s := &Session{
		coord:       opts.Coordinator,
		engine:      opts.Engine,
		transcripts: opts.Transcripts,
		slides:      opts.Slides,
		library:     opts.Library,
		studio:      opts.Studio,
		blobs:       opts.Blobs,
		panel:       lyrics.New(opts.Engine),
		videos:      &blob.Scope{},
	}
	s.unsub = s.engine.Subscribe(s.onEngineEvent)
	return s
}

// Close detaches from the engine, releases rendered videos and shuts the
// coordinator down.
func (s *Session) Close() {
	s.unsub()
	s.mu.Lock()
	videos := s.videos
	s.mu.Unlock()
	if err := videos.Close(); err != nil {
		log.Printf("⚠️  Releasing videos failed: %v", err)
	}
	s.coord.Close()
}

func (s *Session) Coordinator() *coordinator.Coordinator { return s.coord }
func (s *Session) Engine() *player.Engine                { return s.engine }
func (s *Session) Panel() *lyrics.Panel                  { return s.panel }

func (s *Session) onEngineEvent(ev player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Track.ID == "" {
		if s.trackID != "" {
			s.trackID, s.bound = "", false
			s.panel.SetTranscript("", nil)
			s.slides.Reset()
		}
		return
	}
	if ev.Track.ID != s.trackID {
		s.trackID, s.bound = ev.Track.ID, false
	}
	// Transcripts of generated briefings arrive after playback starts.
	if !s.bound {
		t, ok := s.transcripts.GetTranscriptForTrack(ev.Track.Title)
		s.panel.SetTranscript(ev.Track.ID, t)
		s.bound = ok
	}
	s.panel.Update(ev.State.CurrentTime)
	s.slides.Update(ev.Track, ev.State.CurrentTime, ev.State.Duration)
}

// View is everything a UI draws in one consistent-enough copy.
type View struct {
	coordinator.Snapshot
	Playback     types.PlaybackState `json:"playback"`
	Track        types.Track         `json:"track"`
	ScrubPreview *float64            `json:"scrub_preview,omitempty"`
	VolumePrev   *float64            `json:"volume_preview,omitempty"`
	Lines        []lyrics.Line       `json:"lines"`
	ActiveLine   int                 `json:"active_line"`
	ScrollTarget int                 `json:"scroll_target"`
	Slide        slideshow.Frame     `json:"slide"`
}

func (s *Session) View() View {
	v := View{
		Snapshot:     s.coord.Snapshot(),
		Playback:     s.engine.State(),
		Track:        s.engine.Track(),
		Lines:        s.panel.Lines(),
		ActiveLine:   s.panel.Active(),
		ScrollTarget: s.panel.ScrollTarget(),
		Slide:        s.slides.Frame(),
	}
	if p, ok := s.engine.ScrubPreview(); ok {
		v.ScrubPreview = &p
	}
	if p, ok := s.engine.VolumePreview(); ok {
		v.VolumePrev = &p
	}
	return v
}

// ClickLine seeks to a transcript line.
func (s *Session) ClickLine(i int) error {
	return s.panel.Click(i)
}

// Playlist is the home playlist when a library is attached, else the
// coordinator's current one.
func (s *Session) Playlist() []types.PlaylistItem {
	if s.library != nil {
		return s.library.HomePlaylist()
	}
	return s.coord.Snapshot().Playlist
}

// PlayItem plays, toggles or generates item within the home playlist.
func (s *Session) PlayItem(item types.PlaylistItem) error {
	return s.coord.PlayOrGenerate(item, s.Playlist())
}

// GenerateToday requests the signed-in user's personal briefing.
func (s *Session) GenerateToday() error {
	return s.coord.RequestGeneration(config.TodaysBriefingID, config.TodaysBriefingTitle,
		types.ContentSource{Kind: types.SourcePersonal})
}

// Refresh reloads the library and drops generations for items that vanished.
func (s *Session) Refresh(ctx context.Context) error {
	if s.library == nil {
		return nil
	}
	if err := s.library.Refresh(ctx); err != nil {
		return err
	}
	s.coord.ClearGeneratingIfNotInList(s.library.IDs())
	return nil
}

// SwitchUser wipes everything that belongs to the previous user and loads
// the new user's library.
func (s *Session) SwitchUser(ctx context.Context, email string) error {
	s.coord.SwitchUser(email)
	s.mu.Lock()
	s.trackID, s.bound = "", false
	s.panel.SetTranscript("", nil)
	s.slides.Reset()
	videos := s.videos
	s.videos = &blob.Scope{}
	s.mu.Unlock()
	if err := videos.Close(); err != nil {
		log.Printf("⚠️  Releasing videos failed: %v", err)
	}

	if s.library == nil {
		return nil
	}
	s.library.Clear()
	if err := s.Refresh(ctx); err != nil {
		log.Printf("⚠️  Library refresh for %s failed: %v", email, err)
		return fmt.Errorf("failed to load library for %s: %w", email, err)
	}
	return nil
}
