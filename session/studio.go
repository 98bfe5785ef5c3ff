package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"briefcast/blob"
	"briefcast/config"
	"briefcast/gateway"
)

// ErrNoStudio is returned by studio operations when the session has none.
var ErrNoStudio = errors.New("studio features are not configured")

// Studio is the gateway surface for server-side briefing work.
type Studio interface {
	InvalidateBriefing(ctx context.Context) error
	GenerateVideo(ctx context.Context, title, summary, token string) (*gateway.Media, error)
	SetPremium(premium bool)
}

// RegenerateToday drops the server's cached briefing and the local
// transcript for it, then generates a fresh one.
func (s *Session) RegenerateToday(ctx context.Context) error {
	if s.studio == nil {
		return ErrNoStudio
	}
	if err := s.studio.InvalidateBriefing(ctx); err != nil {
		return fmt.Errorf("failed to invalidate briefing: %w", err)
	}
	s.transcripts.Invalidate(config.TodaysBriefingTitle)
	s.mu.Lock()
	if s.trackID == config.TodaysBriefingID {
		s.bound = false
	}
	s.mu.Unlock()
	return s.GenerateToday()
}

// SetPremium toggles the premium entitlement sent with video requests.
func (s *Session) SetPremium(premium bool) error {
	if s.studio == nil {
		return ErrNoStudio
	}
	s.studio.SetPremium(premium)
	return nil
}

// RenderVideo renders a video briefing and stores it. The handle lives until
// the session closes or the user changes.
func (s *Session) RenderVideo(ctx context.Context, title, summary string) (*blob.Handle, error) {
	if s.studio == nil || s.blobs == nil {
		return nil, ErrNoStudio
	}
	m, err := s.studio.GenerateVideo(ctx, title, summary, gateway.NewProgressToken())
	if err != nil {
		return nil, err
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}
	h, err := s.blobs.Create(ctx, "video", m.Data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store video: %w", err)
	}
	log.Printf("🎬 Rendered video %q (%d bytes)", title, len(m.Data))

	s.mu.Lock()
	videos := s.videos
	s.mu.Unlock()
	return videos.Adopt(h), nil
}
