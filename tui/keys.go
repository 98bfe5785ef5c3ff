package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Back      key.Binding
	Forward   key.Binding
	ScrubBack key.Binding
	ScrubFwd  key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Rate      key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	Next      key.Binding
	Prev      key.Binding
	LineDown  key.Binding
	LineUp    key.Binding
	ItemDown  key.Binding
	ItemUp    key.Binding
	PlayItem  key.Binding
	Generate  key.Binding
	Regen     key.Binding
	Dismiss   key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
	Back:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-10s")),
	Forward:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+10s")),
	ScrubBack: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "scrub back")),
	ScrubFwd:  key.NewBinding(key.WithKeys("."), key.WithHelp(".", "scrub fwd")),
	Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "seek")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel scrub")),
	Rate:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "speed")),
	VolUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
	VolDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "vol down")),
	Next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	Prev:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
	LineDown:  key.NewBinding(key.WithKeys("j"), key.WithHelp("j/k", "lyrics")),
	LineUp:    key.NewBinding(key.WithKeys("k")),
	ItemDown:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↑/↓", "briefings")),
	ItemUp:    key.NewBinding(key.WithKeys("up")),
	PlayItem:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "play")),
	Generate:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "today's briefing")),
	Regen:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "regenerate")),
	Dismiss:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Back, k.Forward, k.Next, k.Prev, k.Generate, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Back, k.Forward, k.ScrubBack, k.ScrubFwd, k.Commit, k.Cancel},
		{k.Rate, k.VolUp, k.VolDown, k.Next, k.Prev},
		{k.LineDown, k.ItemDown, k.PlayItem, k.Generate, k.Regen, k.Dismiss, k.Quit},
	}
}
