package types

import "time"

// PlaybackStatus is a state of the playback engine's state machine.
type PlaybackStatus string

const (
	StatusIdle    PlaybackStatus = "idle"
	StatusLoading PlaybackStatus = "loading"
	StatusPlaying PlaybackStatus = "playing"
	StatusPaused  PlaybackStatus = "paused"
	StatusEnded   PlaybackStatus = "ended"
)

// PlaybackState is derived, never persisted.
type PlaybackState struct {
	Status       PlaybackStatus `json:"status"`
	CurrentTime  float64        `json:"current_time"`
	Duration     float64        `json:"duration"`
	IsPlaying    bool           `json:"is_playing"`
	PlaybackRate float64        `json:"playback_rate"`
	Volume       float64        `json:"volume"`
}

// NotificationLevel classifies user-visible messages.
type NotificationLevel string

const (
	LevelInfo  NotificationLevel = "info"
	LevelError NotificationLevel = "error"
)

// Notification is a dismissable, user-visible message.
type Notification struct {
	ID      string            `json:"id"`
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	At      time.Time         `json:"at"`
}
