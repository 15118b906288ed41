package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the review TUI. Bindings on
// the same key (skip and sort on "s") belong to different views and are
// never active together.
type keyMap struct {
	keep     key.Binding
	remove   key.Binding
	skip     key.Binding
	undo     key.Binding
	prevPage key.Binding
	nextPage key.Binding
	sort     key.Binding
	reverse  key.Binding
	up       key.Binding
	down     key.Binding
	nextView key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		keep:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "keep")),
		remove:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "remove")),
		skip:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		prevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		nextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
		reverse:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direction")),
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		nextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save & quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextView, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.remove, k.keep, k.skip, k.undo},
		{k.sort, k.reverse, k.up, k.down},
		{k.nextView, k.quit},
	}
}
