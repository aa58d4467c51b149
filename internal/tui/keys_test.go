package tui_test

import (
	"testing"

	"github.com/DonovanMods/linux-mc-launcher/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestKeyMap_VimMode(t *testing.T) {
	km := tui.NewKeyMap("vim")

	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
	assert.True(t, km.IsHome(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}))
	assert.True(t, km.IsEnd(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}))
	assert.True(t, km.IsConfirm(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.True(t, km.IsCancel(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.True(t, km.IsQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
}

func TestKeyMap_StandardMode(t *testing.T) {
	km := tui.NewKeyMap("standard")

	// Standard mode should still support arrow keys
	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.True(t, km.IsDown(tea.KeyMsg{Type: tea.KeyDown}))
	assert.True(t, km.IsHome(tea.KeyMsg{Type: tea.KeyHome}))
	assert.True(t, km.IsEnd(tea.KeyMsg{Type: tea.KeyEnd}))

	// But not vim keys for navigation
	assert.False(t, km.IsUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.False(t, km.IsDown(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
	assert.False(t, km.IsHome(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}}))
}

func TestKeyMap_ArrowKeysWorkInBothModes(t *testing.T) {
	vimKm := tui.NewKeyMap("vim")
	stdKm := tui.NewKeyMap("standard")

	// Arrow keys should work in both modes
	upKey := tea.KeyMsg{Type: tea.KeyUp}
	downKey := tea.KeyMsg{Type: tea.KeyDown}

	assert.True(t, vimKm.IsUp(upKey))
	assert.True(t, stdKm.IsUp(upKey))
	assert.True(t, vimKm.IsDown(downKey))
	assert.True(t, stdKm.IsDown(downKey))
}

func TestKeyMap_Help(t *testing.T) {
	vimKm := tui.NewKeyMap("vim")
	stdKm := tui.NewKeyMap("standard")

	vimHelp := vimKm.NavigationHelp()
	stdHelp := stdKm.NavigationHelp()

	assert.Contains(t, vimHelp, "j/k")
	assert.Contains(t, stdHelp, "↑/↓")
}

func TestKeyMap_DefaultsToVim(t *testing.T) {
	km := tui.NewKeyMap("")

	// Should default to vim mode
	assert.True(t, km.IsUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
}

func TestKeyMap_Actions(t *testing.T) {
	km := tui.NewKeyMap("standard")

	assert.True(t, km.IsFixAll(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}}))
	assert.True(t, km.IsRefresh(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}))
	assert.True(t, km.IsCancelTasks(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
	assert.False(t, km.IsFixAll(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}))
	assert.Contains(t, km.FullHelp(), "Fix all autofixable issues")
	assert.Contains(t, km.FullHelp(), "Home")
}
