// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// picker.go - Vertical list picker.
//
// Used by the login view (companies, teams, parts, employees) and the
// chatbot list. Items carry an optional meta string rendered dimmed
// after the label. Navigation wraps at both ends.

package components

import (
	"strings"

	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// PickerItem is one selectable row.
type PickerItem struct {
	Label string
	Meta  string
}

// Picker is a simple vertical selection list.
type Picker struct {
	theme *styles.Theme

	title  string
	items  []PickerItem
	cursor int
	empty  string // message when there are no items
}

// NewPicker creates a picker with the given title.
func NewPicker(theme *styles.Theme, title string) Picker {
	return Picker{theme: theme, title: title, empty: "nothing here yet"}
}

// SetItems replaces the items and clamps the cursor.
func (p *Picker) SetItems(items []PickerItem) {
	p.items = items
	if p.cursor >= len(items) {
		p.cursor = len(items) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// SetEmptyMessage sets the text shown when the list is empty.
func (p *Picker) SetEmptyMessage(msg string) {
	p.empty = msg
}

// SetTitle changes the picker title.
func (p *Picker) SetTitle(title string) {
	p.title = title
}

// Len returns the number of items.
func (p Picker) Len() int {
	return len(p.items)
}

// Up moves the cursor up, wrapping to the bottom.
func (p *Picker) Up() {
	if len(p.items) == 0 {
		return
	}
	p.cursor--
	if p.cursor < 0 {
		p.cursor = len(p.items) - 1
	}
}

// Down moves the cursor down, wrapping to the top.
func (p *Picker) Down() {
	if len(p.items) == 0 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.items)
}

// Selected returns the item under the cursor.
func (p Picker) Selected() (PickerItem, bool) {
	if len(p.items) == 0 {
		return PickerItem{}, false
	}
	return p.items[p.cursor], true
}

// Cursor returns the cursor index.
func (p Picker) Cursor() int {
	return p.cursor
}

// View renders the titled list.
func (p Picker) View() string {
	var b strings.Builder
	if p.title != "" {
		b.WriteString(p.theme.HeaderTitle.Render(p.title))
		b.WriteString("\n")
	}

	if len(p.items) == 0 {
		b.WriteString(p.theme.ListEmpty.Render(p.empty))
		return p.theme.ListBox.Render(b.String())
	}

	for i, item := range p.items {
		line := item.Label
		if item.Meta != "" {
			line += " " + p.theme.ListItemMeta.Render(item.Meta)
		}
		if i == p.cursor {
			b.WriteString(p.theme.ListItemSelected.Render("> " + line))
		} else {
			b.WriteString(p.theme.ListItem.Render("  " + line))
		}
		if i < len(p.items)-1 {
			b.WriteString("\n")
		}
	}
	return p.theme.ListBox.Render(b.String())
}
