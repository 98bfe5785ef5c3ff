// Package tui is the terminal player.
package tui

import (
	"briefcast/session"
	"briefcast/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	scrubStep   = 5.0
	volumeStep  = 0.1
	lyricRows   = 7
	playlistMax = 8
)

// Model is the player UI. Playback state lives in the session; the model
// only keeps what the user is pointing at.
type Model struct {
	session *session.Session

	view     session.View
	playlist []types.PlaylistItem

	progress progress.Model
	spinner  spinner.Model
	help     help.Model

	itemCursor  int
	lyricCursor int
	lastScroll  int
	lastErr     string
	width       int
}

// NewModel creates a new player model
func NewModel(s *session.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = okStyle
	m := Model{
		session:    s,
		progress:   progress.New(progress.WithDefaultGradient()),
		spinner:    sp,
		help:       help.New(),
		lastScroll: -1,
		width:      80,
	}
	return m.refresh()
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, refreshLibrary(m.session))
}

// refresh pulls a fresh view and keeps the lyric cursor on the active line
// whenever the active line moves.
func (m Model) refresh() Model {
	m.view = m.session.View()
	m.playlist = m.session.Playlist()
	if m.itemCursor >= len(m.playlist) {
		m.itemCursor = max(0, len(m.playlist)-1)
	}
	if m.view.ScrollTarget != m.lastScroll {
		m.lastScroll = m.view.ScrollTarget
		if m.view.ScrollTarget >= 0 {
			m.lyricCursor = m.view.ScrollTarget
		}
	}
	if m.lyricCursor >= len(m.view.Lines) {
		m.lyricCursor = max(0, len(m.view.Lines)-1)
	}
	return m
}
