// Package events publishes playback and generation events to Kafka and
// reads them back.
package events

import "time"

// Type names an event.
type Type string

const (
	TrackStarted        Type = "track_started"
	TrackEnded          Type = "track_ended"
	GenerationSucceeded Type = "generation_succeeded"
	GenerationFailed    Type = "generation_failed"
)

// Event is the JSON message written to the topic.
type Event struct {
	Type       Type      `json:"type"`
	TrackID    string    `json:"track_id"`
	Title      string    `json:"title,omitempty"`
	Src        string    `json:"src,omitempty"`
	Cached     bool      `json:"cached,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}
