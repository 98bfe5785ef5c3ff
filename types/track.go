package types

import "time"

// Track is the unit of "currently playing" audio.
type Track struct {
	ID       string  `json:"id"`
	Src      string  `json:"src"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration,omitempty"` // seconds, 0 when unknown
}

// SourceKind selects which generation endpoint synthesises a briefing.
type SourceKind string

const (
	SourceText     SourceKind = "text"
	SourceURLs     SourceKind = "urls"
	SourcePersonal SourceKind = "personal"
)

// ContentSource is what the remote service turns into audio.
type ContentSource struct {
	Kind SourceKind `json:"kind"`
	Text string     `json:"text,omitempty"`
	URLs []string   `json:"urls,omitempty"`
}

// IsZero reports whether the source carries nothing to generate from.
func (s ContentSource) IsZero() bool {
	switch s.Kind {
	case SourceText:
		return s.Text == ""
	case SourceURLs:
		return len(s.URLs) == 0
	case SourcePersonal:
		return false
	}
	return true
}

// PlaylistItem is a lightweight descriptor of something that could play next.
type PlaylistItem struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	AudioURL string        `json:"audio_url,omitempty"`
	Source   ContentSource `json:"source,omitempty"`
}

// GenerationState describes the single in-flight generation request.
type GenerationState struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Progress  int       `json:"progress"`
	StartedAt time.Time `json:"started_at"`
}
