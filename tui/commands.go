package tui

import (
	"context"
	"time"

	"briefcast/session"
	"briefcast/types"

	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = 250 * time.Millisecond

// tickCmd creates a command that ticks for view refreshes
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func generateToday(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{What: "generate", Err: s.GenerateToday()}
	}
}

func regenerateToday(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return ActionMsg{What: "regenerate", Err: s.RegenerateToday(ctx)}
	}
}

func playItem(s *session.Session, item types.PlaylistItem) tea.Cmd {
	return func() tea.Msg {
		return ActionMsg{What: "play", Err: s.PlayItem(item)}
	}
}

func skipTrack(s *session.Session, next bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if next {
			err = s.Coordinator().SkipNext()
		} else {
			err = s.Coordinator().SkipPrevious()
		}
		return ActionMsg{What: "skip", Err: err}
	}
}

func refreshLibrary(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return ActionMsg{What: "refresh", Err: s.Refresh(ctx)}
	}
}
