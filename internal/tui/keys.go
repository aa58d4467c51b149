package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the TUI
type KeyMap struct {
	mode string
}

// NewKeyMap creates a new keymap for the given mode
func NewKeyMap(mode string) *KeyMap {
	if mode == "" {
		mode = "vim"
	}
	return &KeyMap{mode: mode}
}

// Mode returns the current keybinding mode
func (k *KeyMap) Mode() string {
	return k.mode
}

// IsUp returns true if the key is an "up" navigation key
func (k *KeyMap) IsUp(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyUp || (k.mode == "vim" && msg.String() == "k")
}

// IsDown returns true if the key is a "down" navigation key
func (k *KeyMap) IsDown(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyDown || (k.mode == "vim" && msg.String() == "j")
}

// IsHome returns true if the key should go to first item
func (k *KeyMap) IsHome(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyHome || (k.mode == "vim" && msg.String() == "g")
}

// IsEnd returns true if the key should go to last item
func (k *KeyMap) IsEnd(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnd || (k.mode == "vim" && msg.String() == "G")
}

// IsConfirm returns true if the key is a confirm/select key
func (k *KeyMap) IsConfirm(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter || msg.String() == " "
}

// IsCancel returns true if the key is a cancel/back key
func (k *KeyMap) IsCancel(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEsc
}

// IsQuit returns true if the key is a quit key
func (k *KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return msg.String() == "q" || msg.Type == tea.KeyCtrlC
}

// IsHelp returns true if the key should show help
func (k *KeyMap) IsHelp(msg tea.KeyMsg) bool {
	return msg.String() == "?"
}

// IsRefresh returns true if the key should rerun every check
func (k *KeyMap) IsRefresh(msg tea.KeyMsg) bool {
	return msg.String() == "r"
}

// IsFixAll returns true if the key should fix every autofixable issue
func (k *KeyMap) IsFixAll(msg tea.KeyMsg) bool {
	return msg.String() == "f"
}

// IsCancelTasks returns true if the key should cancel running installs
func (k *KeyMap) IsCancelTasks(msg tea.KeyMsg) bool {
	return msg.String() == "x"
}

// NavigationHelp returns help text for navigation keys
func (k *KeyMap) NavigationHelp() string {
	if k.mode == "vim" {
		return "j/k: navigate  enter: fix/select"
	}
	return "↑/↓: navigate  enter: fix/select"
}

// FullHelp returns complete help text
func (k *KeyMap) FullHelp() string {
	nav := `Navigation:
  j/k     Move down/up
  g/G     Go to first/last item
  1-3     Switch view`
	if k.mode != "vim" {
		nav = `Navigation:
  ↑/↓     Move up/down
  Home    Go to first item
  End     Go to last item
  1-3     Switch view`
	}
	return nav + `

Actions:
  enter   Fix issue / select instance
  f       Fix all autofixable issues
  r       Diagnose again
  x       Cancel running installs
  ?       Help
  q       Quit`
}
