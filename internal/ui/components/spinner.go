// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// spinner.go - Loading spinner with a working message.

package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// Spinner wraps the bubbles spinner with the docent theme and an
// optional message ("Training handbook...", "Asking...").
type Spinner struct {
	theme   *styles.Theme
	model   spinner.Model
	message string
	active  bool
}

// NewSpinner creates a themed spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	m := spinner.New()
	m.Spinner = spinner.Dot
	m.Style = theme.Spinner
	return Spinner{theme: theme, model: m}
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.active = true
	return s.model.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.active = false
	s.message = ""
}

// Active reports whether the spinner is running.
func (s Spinner) Active() bool {
	return s.active
}

// Update advances the spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return s, cmd
}

// View renders the spinner and its message, or nothing when stopped.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	out := s.model.View()
	if s.message != "" {
		out += " " + s.theme.WorkingText.Render(s.message)
	}
	return out
}
