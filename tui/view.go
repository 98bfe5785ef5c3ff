package tui

import (
	"fmt"
	"strings"

	"briefcast/lyrics"
	"briefcast/types"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(TextTitle))
	if m.view.User != "" {
		b.WriteString(dimStyle.Render("  " + m.view.User))
	}
	b.WriteString("\n")

	b.WriteString(m.nowPlaying())
	b.WriteString("\n")

	if g := m.view.Generating; g != nil {
		b.WriteString(fmt.Sprintf("%s Generating %s  %d%%\n", m.spinner.View(), g.Title, g.Progress))
		b.WriteString(m.progress.ViewAs(float64(g.Progress) / 100))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(panelStyle.Render(m.transcriptPanel()))
	b.WriteString("\n")
	b.WriteString(m.slideshow())
	b.WriteString("\n\n")

	b.WriteString(m.playlistView())
	b.WriteString("\n")

	for _, n := range m.view.Notifications {
		style := okStyle
		if n.Level == types.LevelError {
			style = errorStyle
		}
		b.WriteString(style.Render("• " + n.Message))
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("❌ " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) nowPlaying() string {
	cur := m.view.Current
	if cur == nil {
		return dimStyle.Render(TextNothingPlaying)
	}
	st := m.view.Playback

	pos := st.CurrentTime
	scrubbing := m.view.ScrubPreview != nil
	if scrubbing {
		pos = *m.view.ScrubPreview
	}
	bar := transportBar(pos, st.Duration, max(10, m.width-24))
	if scrubbing {
		bar = scrubStyle.Render(bar)
	}

	vol := st.Volume
	if m.view.VolumePrev != nil {
		vol = *m.view.VolumePrev
	}
	return fmt.Sprintf("%s %s\n%s %s %s   %gx  vol %d%%",
		statusIcon(st.Status), trackStyle.Render(cur.Title),
		formatClock(pos), bar, formatClock(st.Duration),
		st.PlaybackRate, int(vol*100+0.5))
}

func (m Model) transcriptPanel() string {
	if len(m.view.Lines) == 0 {
		return dimStyle.Render(TextNoTranscript)
	}
	start, end := lyricWindow(len(m.view.Lines), m.lyricCursor, lyricRows)
	var b strings.Builder
	for _, l := range m.view.Lines[start:end] {
		marker := "  "
		if l.Index == m.lyricCursor {
			marker = cursorStyle.Render("› ")
		}
		text := l.Text
		switch l.State {
		case lyrics.Active:
			text = activeLineStyle.Render(text)
		case lyrics.Past:
			text = pastLineStyle.Render(text)
		}
		b.WriteString(marker + text + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) slideshow() string {
	f := m.view.Slide
	switch {
	case m.view.Current == nil:
		return ""
	case f.Syncing:
		return dimStyle.Render("🖼  " + TextSyncing)
	case f.ImageURL == "":
		return dimStyle.Render(fmt.Sprintf("🖼  %q", f.Query))
	}
	return fmt.Sprintf("🖼  %s %s", okStyle.Render(f.Query), dimStyle.Render(f.ImageURL))
}

func (m Model) playlistView() string {
	if len(m.playlist) == 0 {
		return dimStyle.Render(TextEmptyPlaylist)
	}
	cached := make(map[string]bool, len(m.view.CachedIDs))
	for _, id := range m.view.CachedIDs {
		cached[id] = true
	}
	start, end := lyricWindow(len(m.playlist), m.itemCursor, playlistMax)

	var b strings.Builder
	for i, item := range m.playlist[start:end] {
		i += start
		marker := "  "
		if i == m.itemCursor {
			marker = cursorStyle.Render("› ")
		}
		badge := ""
		switch {
		case m.view.Current != nil && m.view.Current.ID == item.ID:
			badge = " ▶"
		case m.view.Generating != nil && m.view.Generating.ID == item.ID:
			badge = " " + m.spinner.View()
		case cached[item.ID] || item.AudioURL != "":
			badge = " 💾"
		}
		b.WriteString(marker + item.Title + badge + "\n")
	}
	return b.String()
}

func statusIcon(s types.PlaybackStatus) string {
	switch s {
	case types.StatusPlaying:
		return "▶️"
	case types.StatusPaused:
		return "⏸️"
	case types.StatusLoading:
		return "⏳"
	case types.StatusEnded:
		return "⏹️"
	}
	return "  "
}

// formatClock renders seconds as m:ss.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// transportBar draws a width-wide bar with a knob at pos/duration. An
// unknown duration draws an empty bar.
func transportBar(pos, duration float64, width int) string {
	if width < 1 {
		return ""
	}
	if duration <= 0 {
		return strings.Repeat("─", width)
	}
	frac := min(max(pos/duration, 0), 1)
	knob := int(frac * float64(width-1))
	return strings.Repeat("━", knob) + "●" + strings.Repeat("─", width-knob-1)
}

// lyricWindow returns the [start, end) slice of n rows that keeps center in
// view.
func lyricWindow(n, center, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	start := center - rows/2
	start = max(0, min(start, n-rows))
	return start, start + rows
}
