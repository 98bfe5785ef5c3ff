package tui

import "time"

// TickMsg is sent periodically to refresh the view
type TickMsg struct {
	Time time.Time
}

// ActionMsg reports the outcome of a background action
type ActionMsg struct {
	What string
	Err  error
}
