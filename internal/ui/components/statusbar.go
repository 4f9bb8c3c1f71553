// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the docent TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT - Bottom status bar
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusWorking
	StatusTraining
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusWorking:
		return "Working..."
	case StatusTraining:
		return "Training..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Shortcut is one key hint shown on the right side of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom bar: scope on the left, status in the
// middle, key hints on the right.
type StatusBar struct {
	theme *styles.Theme

	scope     string
	status    Status
	shortcuts []Shortcut
	width     int
}

// NewStatusBar creates a status bar using the shared theme.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme, status: StatusReady}
}

// SetScope sets the "company / team / part" label.
func (b *StatusBar) SetScope(scope string) {
	b.scope = scope
}

// SetStatus sets the current application status.
func (b *StatusBar) SetStatus(status Status) {
	b.status = status
}

// SetShortcuts replaces the key hints.
func (b *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	b.shortcuts = shortcuts
}

// SetWidth sets the render width.
func (b *StatusBar) SetWidth(width int) {
	b.width = width
}

// View renders the status bar.
func (b StatusBar) View() string {
	left := b.status.String()
	if b.scope != "" {
		left = b.theme.StatusScope.Render(b.scope) + "  " + left
	}

	var hints []string
	for _, sc := range b.shortcuts {
		hints = append(hints, b.theme.ShortcutKey.Render(sc.Key)+" "+b.theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")

	if b.width <= 0 {
		return b.theme.StatusBar.Render(left + "  " + right)
	}

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow terminal: drop the hints before truncating the scope.
		line := runewidth.Truncate(left, b.width-2, "…")
		return b.theme.StatusBar.Width(b.width).Render(line)
	}

	return b.theme.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}
