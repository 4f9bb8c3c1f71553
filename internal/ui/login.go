// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Login screen.
//
// Four stacked pickers, one per selection level. Enter commits the
// highlighted entry and moves down a level; esc moves back up and
// resets everything below; "a" opens an inline input to register a new
// node, which is committed to the backend directory before it appears.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// loginLevel is the selection level the picker is currently on.
type loginLevel int

const (
	levelCompany loginLevel = iota
	levelTeam
	levelPart
	levelEmployee
)

func (l loginLevel) title() string {
	switch l {
	case levelCompany:
		return "Select your company"
	case levelTeam:
		return "Select your team"
	case levelPart:
		return "Select your part"
	default:
		return "Select your employee ID"
	}
}

// nodeAddedMsg reports the result of registering a new tree node.
type nodeAddedMsg struct {
	name string
	err  error
}

// levelCommittedMsg reports the result of a selection transition.
type levelCommittedMsg struct {
	level loginLevel
	err   error
}

type loginView struct {
	deps  Deps
	theme *styles.Theme

	level   loginLevel
	picker  components.Picker
	adding  bool
	input   textinput.Model
	spinner components.Spinner
	err     error

	width  int
	height int
}

func newLoginView(deps Deps, theme *styles.Theme) loginView {
	input := textinput.New()
	input.Placeholder = "name"
	input.CharLimit = 64

	v := loginView{
		deps:    deps,
		theme:   theme,
		picker:  components.NewPicker(theme, ""),
		input:   input,
		spinner: components.NewSpinner(theme),
	}
	v.picker.SetEmptyMessage("nothing registered; press 'a' to add")
	v.reload()
	return v
}

func (v *loginView) setSize(width, height int) {
	v.width = width
	v.height = height
}

// reload refreshes the picker for the current level from the tree cache.
func (v *loginView) reload() {
	sel := v.deps.Selection.Current()

	var names []string
	switch v.level {
	case levelCompany:
		names = v.deps.Tree.Companies()
	case levelTeam:
		names = v.deps.Tree.Teams(sel.Company)
	case levelPart:
		names = v.deps.Tree.Parts(sel.Company, sel.Team)
	case levelEmployee:
		names = v.deps.Tree.Employees(sel.Company, sel.Team, sel.Part)
	}

	items := make([]components.PickerItem, 0, len(names))
	for _, n := range names {
		items = append(items, components.PickerItem{Label: n})
	}
	v.picker.SetTitle(v.level.title())
	v.picker.SetItems(items)
}

func (v loginView) update(msg tea.Msg) (loginView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.adding {
			return v.updateAdding(msg)
		}
		return v.updateKeys(msg)

	case nodeAddedMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.reload()
		return v, nil

	case levelCommittedMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		if msg.level == levelEmployee {
			return v, func() tea.Msg { return loggedInMsg{} }
		}
		v.level++
		v.reload()
		return v, nil
	}

	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return v, cmd
}

func (v loginView) updateKeys(msg tea.KeyMsg) (loginView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.picker.Up()
	case "down", "j":
		v.picker.Down()
	case "enter":
		item, ok := v.picker.Selected()
		if !ok {
			return v, nil
		}
		cmd := v.commit(item.Label)
		start := v.spinner.Start("Signing in")
		return v, tea.Batch(cmd, start)
	case "a":
		v.adding = true
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink
	case "esc":
		if v.level > levelCompany {
			v.level--
			v.reload()
		}
	}
	return v, nil
}

func (v loginView) updateAdding(msg tea.KeyMsg) (loginView, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(v.input.Value())
		v.adding = false
		v.input.Blur()
		if name == "" {
			return v, nil
		}
		start := v.spinner.Start("Registering " + name)
		return v, tea.Batch(v.addNode(name), start)
	case "esc":
		v.adding = false
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// commit validates the chosen name with the backend (employee level)
// and advances the selection machine.
func (v loginView) commit(name string) tea.Cmd {
	deps := v.deps
	level := v.level
	return func() tea.Msg {
		var err error
		switch level {
		case levelCompany:
			err = deps.Selection.SelectCompany(name)
		case levelTeam:
			err = deps.Selection.SelectTeam(name)
		case levelPart:
			err = deps.Selection.SelectPart(name)
		case levelEmployee:
			sel := deps.Selection.Current()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, serr := deps.Client.SearchLogin(ctx, sel.Company, sel.Team, sel.Part, name); serr != nil {
				// The directory is advisory here; the add path already
				// validated tree membership. Only hard failures block.
				err = serr
			} else {
				err = deps.Selection.SelectEmployee(name)
			}
		}
		return levelCommittedMsg{level: level, err: err}
	}
}

// addNode registers a new node at the current level.
func (v loginView) addNode(name string) tea.Cmd {
	deps := v.deps
	level := v.level
	return func() tea.Msg {
		sel := deps.Selection.Current()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		switch level {
		case levelCompany:
			err = deps.Tree.AddCompany(ctx, name)
		case levelTeam:
			err = deps.Tree.AddTeam(ctx, sel.Company, name)
		case levelPart:
			err = deps.Tree.AddPart(ctx, sel.Company, sel.Team, name)
		case levelEmployee:
			err = deps.Tree.AddEmployee(ctx, sel.Company, sel.Team, sel.Part, name)
		}
		return nodeAddedMsg{name: name, err: err}
	}
}

func (v loginView) view() string {
	var b strings.Builder
	b.WriteString(v.theme.Header.Render("docent"))
	b.WriteString("\n\n")
	b.WriteString(v.picker.View())
	b.WriteString("\n")

	if v.adding {
		b.WriteString(v.theme.InputContainer.Render(
			v.theme.InputPrompt.Render("new: ") + v.input.View()))
		b.WriteString("\n")
	}
	if s := v.spinner.View(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.theme.ErrorBox.Render(
			v.theme.ErrorTitle.Render("Login failed") + "\n" +
				v.theme.ErrorMessage.Render(v.err.Error())))
		b.WriteString("\n")
	}

	sel := v.deps.Selection.Current()
	crumbs := make([]string, 0, 3)
	if sel.Company != "" {
		crumbs = append(crumbs, sel.Company)
	}
	if sel.Team != "" {
		crumbs = append(crumbs, sel.Team)
	}
	if sel.Part != "" {
		crumbs = append(crumbs, sel.Part)
	}
	if len(crumbs) > 0 {
		b.WriteString(v.theme.HeaderSubtitle.Render(fmt.Sprintf("so far: %s", strings.Join(crumbs, " / "))))
	}
	return v.theme.Container.Render(b.String())
}
