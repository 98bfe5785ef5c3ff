package tui

import (
	"errors"
	"fmt"
	"log"

	"briefcast/config"
	"briefcast/gateway"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, msg.Width-20)
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		return m.refresh(), tickCmd()
	case ActionMsg:
		return m.handleAction(msg), nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := m.session.Engine()
	coord := m.session.Coordinator()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Toggle):
		coord.SetPlaying(!coord.IsPlaying())
	case key.Matches(msg, keys.Back):
		engine.Skip(-config.SkipSeconds)
	case key.Matches(msg, keys.Forward):
		engine.Skip(config.SkipSeconds)
	case key.Matches(msg, keys.ScrubBack), key.Matches(msg, keys.ScrubFwd):
		step := scrubStep
		if key.Matches(msg, keys.ScrubBack) {
			step = -scrubStep
		}
		pos, ok := engine.ScrubPreview()
		if !ok {
			engine.BeginScrub()
			pos = engine.State().CurrentTime
		}
		engine.Scrub(pos + step)
	case key.Matches(msg, keys.Commit):
		if _, ok := engine.ScrubPreview(); ok {
			engine.CommitScrub()
		} else if len(m.view.Lines) > 0 {
			if err := m.session.ClickLine(m.lyricCursor); err != nil {
				m.lastErr = err.Error()
			}
		}
	case key.Matches(msg, keys.Cancel):
		engine.CancelScrub()
	case key.Matches(msg, keys.Rate):
		engine.CyclePlaybackRate()
	case key.Matches(msg, keys.VolUp):
		engine.SetVolume(engine.State().Volume + volumeStep)
	case key.Matches(msg, keys.VolDown):
		engine.SetVolume(engine.State().Volume - volumeStep)
	case key.Matches(msg, keys.Next):
		return m, skipTrack(m.session, true)
	case key.Matches(msg, keys.Prev):
		return m, skipTrack(m.session, false)
	case key.Matches(msg, keys.LineDown):
		if m.lyricCursor < len(m.view.Lines)-1 {
			m.lyricCursor++
		}
		return m, nil
	case key.Matches(msg, keys.LineUp):
		if m.lyricCursor > 0 {
			m.lyricCursor--
		}
		return m, nil
	case key.Matches(msg, keys.ItemDown):
		if m.itemCursor < len(m.playlist)-1 {
			m.itemCursor++
		}
		return m, nil
	case key.Matches(msg, keys.ItemUp):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
		return m, nil
	case key.Matches(msg, keys.PlayItem):
		if m.itemCursor < len(m.playlist) {
			return m, playItem(m.session, m.playlist[m.itemCursor])
		}
		return m, nil
	case key.Matches(msg, keys.Generate):
		return m, generateToday(m.session)
	case key.Matches(msg, keys.Regen):
		return m, regenerateToday(m.session)
	case key.Matches(msg, keys.Dismiss):
		if n := m.view.Notifications; len(n) > 0 {
			coord.Dismiss(n[len(n)-1].ID)
		}
		m.lastErr = ""
	}
	return m.refresh(), nil
}

// handleAction records failed background actions; the coordinator already
// turned gateway failures into notifications.
func (m Model) handleAction(msg ActionMsg) Model {
	if msg.Err != nil {
		log.Printf("⚠️  %s failed: %v", msg.What, msg.Err)
		m.lastErr = fmt.Sprintf("%s: %s", msg.What, describe(msg.Err))
	}
	return m.refresh()
}

func describe(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return gateway.UserMessage(err)
	}
	return err.Error()
}
