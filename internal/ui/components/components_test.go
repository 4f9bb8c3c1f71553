// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewThemeWithPreference("dark")
}

// =============================================================================
// PICKER
// =============================================================================

func TestPickerNavigationWraps(t *testing.T) {
	p := NewPicker(testTheme(), "Select")
	p.SetItems([]PickerItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})

	if p.Cursor() != 0 {
		t.Fatalf("initial cursor = %d", p.Cursor())
	}

	p.Up()
	if p.Cursor() != 2 {
		t.Errorf("Up from top should wrap to bottom, got %d", p.Cursor())
	}

	p.Down()
	if p.Cursor() != 0 {
		t.Errorf("Down from bottom should wrap to top, got %d", p.Cursor())
	}

	p.Down()
	sel, ok := p.Selected()
	if !ok || sel.Label != "b" {
		t.Errorf("Selected = %v, %v", sel, ok)
	}
}

func TestPickerEmpty(t *testing.T) {
	p := NewPicker(testTheme(), "Select")
	p.SetEmptyMessage("no chatbots yet")

	if _, ok := p.Selected(); ok {
		t.Error("Selected on empty picker should report not ok")
	}

	p.Up()
	p.Down()
	if p.Cursor() != 0 {
		t.Errorf("cursor moved on empty picker: %d", p.Cursor())
	}

	if view := p.View(); !strings.Contains(view, "no chatbots yet") {
		t.Errorf("empty view should show the empty message, got %q", view)
	}
}

func TestPickerCursorClampsOnShrink(t *testing.T) {
	p := NewPicker(testTheme(), "Select")
	p.SetItems([]PickerItem{{Label: "a"}, {Label: "b"}, {Label: "c"}})
	p.Down()
	p.Down()

	p.SetItems([]PickerItem{{Label: "only"}})
	sel, ok := p.Selected()
	if !ok || sel.Label != "only" {
		t.Errorf("Selected after shrink = %v, %v", sel, ok)
	}
}

// =============================================================================
// STATUS BAR
// =============================================================================

func TestStatusBarView(t *testing.T) {
	b := NewStatusBar(testTheme())
	b.SetScope("acme / support / returns")
	b.SetStatus(StatusTraining)
	b.SetShortcuts([]Shortcut{{Key: "q", Desc: "quit"}})
	b.SetWidth(100)

	view := b.View()
	if !strings.Contains(view, "acme / support / returns") {
		t.Errorf("status bar missing scope: %q", view)
	}
	if !strings.Contains(view, "Training...") {
		t.Errorf("status bar missing status: %q", view)
	}
	if !strings.Contains(view, "quit") {
		t.Errorf("status bar missing shortcut: %q", view)
	}
}

func TestStatusBarNarrowDropsHints(t *testing.T) {
	b := NewStatusBar(testTheme())
	b.SetScope("averylongcompanyname / team / part")
	b.SetShortcuts([]Shortcut{{Key: "ctrl+t", Desc: "train a new chatbot"}})
	b.SetWidth(20)

	view := b.View()
	if strings.Contains(view, "train a new chatbot") {
		t.Errorf("narrow bar should drop hints: %q", view)
	}
}

// =============================================================================
// SPINNER
// =============================================================================

func TestSpinnerLifecycle(t *testing.T) {
	s := NewSpinner(testTheme())

	if s.Active() {
		t.Error("new spinner should be inactive")
	}
	if s.View() != "" {
		t.Error("inactive spinner should render nothing")
	}

	cmd := s.Start("Training handbook")
	if cmd == nil {
		t.Error("Start should return the tick command")
	}
	if !s.Active() {
		t.Error("spinner should be active after Start")
	}
	if view := s.View(); !strings.Contains(view, "Training handbook") {
		t.Errorf("active spinner should show message, got %q", view)
	}

	s.Stop()
	if s.Active() || s.View() != "" {
		t.Error("stopped spinner should be inactive and render nothing")
	}
}
