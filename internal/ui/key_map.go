package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	next      key.Binding
	enter     key.Binding
	back      key.Binding
	toggle    key.Binding
	dashboard key.Binding
	detection key.Binding
	favorites key.Binding
	start     key.Binding
	stop      key.Binding
	capture   key.Binding
	refresh   key.Binding
	emotion   key.Binding
	favorite  key.Binding
	remove    key.Binding
	prefs     key.Binding
	upload    key.Binding
	admin     key.Binding
	logout    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		toggle:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "login/register")),
		dashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		detection: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "detect")),
		favorites: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "favorites")),
		start:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start camera")),
		stop:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop camera")),
		capture:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "capture")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		emotion:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "pick emotion")),
		favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		prefs:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preferences")),
		upload:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		admin:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "admin")),
		logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.dashboard, k.detection, k.favorites, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.next, k.enter},
		{k.dashboard, k.detection, k.favorites},
		{k.start, k.stop, k.capture, k.refresh, k.emotion, k.favorite},
		{k.remove, k.prefs, k.upload, k.admin, k.logout, k.quit},
	}
}
