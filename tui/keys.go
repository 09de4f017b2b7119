package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Interval key.Binding
	Reseed   key.Binding
	Clear    key.Binding
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Cell     key.Binding
	Help     key.Binding
	Quit     key.Binding

	Apply  key.Binding
	Cancel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/stop")),
		Faster:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-10ms")),
		Slower:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+10ms")),
		Interval: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "type interval")),
		Reseed:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reseed")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Up:       key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "up")),
		Down:     key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "down")),
		Left:     key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "left")),
		Right:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "right")),
		Cell:     key.NewBinding(key.WithKeys("enter", "x"), key.WithHelp("x", "toggle cell")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Faster, k.Slower, k.Interval, k.Cell, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Faster, k.Slower, k.Interval},
		{k.Up, k.Down, k.Left, k.Right, k.Cell},
		{k.Reseed, k.Clear, k.Help, k.Quit},
	}
}

// editKeys is shown while the interval field has focus
type editKeys struct{ k keyMap }

func (e editKeys) ShortHelp() []key.Binding { return []key.Binding{e.k.Apply, e.k.Cancel} }

func (e editKeys) FullHelp() [][]key.Binding { return [][]key.Binding{e.ShortHelp()} }
