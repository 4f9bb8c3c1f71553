// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bots.go - Chatbot list screen.
//
// Lists the chatbots in the current scope with their training state,
// and is the hub for everything else: enter opens chat, z opens a
// quiz, n opens the new-chatbot form, r retrains, d deletes after a
// y/n confirmation, L logs out.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/registry"
	"github.com/jeranaias/docent-tui/internal/training"
	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// botsLoadedMsg carries the refreshed chatbot list. A stale list plus
// an error means the store failed and the cache is shown.
type botsLoadedMsg struct {
	recs []registry.Record
	err  error
}

// jobStartedMsg carries a freshly started training job, or the reason
// it could not start.
type jobStartedMsg struct {
	job *training.Job
	err error
}

// botDeletedMsg reports a finished delete.
type botDeletedMsg struct {
	name    string
	warning string
	err     error
}

// botsForm is the new-chatbot form state.
type botsForm struct {
	active bool
	name   textinput.Model
	pdfs   textinput.Model
	field  int // 0 = name, 1 = pdfs
}

type botsView struct {
	deps  Deps
	theme *styles.Theme

	picker    components.Picker
	recs      []registry.Record
	spinner   components.Spinner
	form      botsForm
	confirm   string // name awaiting delete confirmation, "" when none
	warning   string
	err       error
	width     int
	height    int
}

func newBotsView(deps Deps, theme *styles.Theme) botsView {
	name := textinput.New()
	name.Placeholder = "chatbot name"
	name.CharLimit = 64

	pdfs := textinput.New()
	pdfs.Placeholder = "/path/to/a.pdf /path/to/b.pdf"
	pdfs.CharLimit = 1024

	v := botsView{
		deps:    deps,
		theme:   theme,
		picker:  components.NewPicker(theme, "Chatbots"),
		spinner: components.NewSpinner(theme),
		form:    botsForm{name: name, pdfs: pdfs},
	}
	v.picker.SetEmptyMessage("no chatbots yet; press 'n' to train one")
	return v
}

func (v *botsView) setSize(width, height int) {
	v.width = width
	v.height = height
}

// load fetches the chatbot list for the current scope.
func (v botsView) load() tea.Cmd {
	deps := v.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		recs, err := deps.Registry.List(ctx)
		return botsLoadedMsg{recs: recs, err: err}
	}
}

func (v botsView) update(msg tea.Msg) (botsView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.form.active {
			return v.updateForm(msg)
		}
		if v.confirm != "" {
			return v.updateConfirm(msg)
		}
		return v.updateKeys(msg)

	case botsLoadedMsg:
		v.spinner.Stop()
		v.recs = msg.recs
		v.err = msg.err
		v.refreshPicker()
		return v, nil

	case jobStartedMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		return v, func() tea.Msg { return openTrainMsg{job: msg.job} }

	case botDeletedMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.warning = msg.warning
		return v, v.load()
	}

	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return v, cmd
}

func (v botsView) updateKeys(msg tea.KeyMsg) (botsView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.picker.Up()
	case "down", "j":
		v.picker.Down()
	case "enter":
		if rec, ok := v.selected(); ok {
			return v, func() tea.Msg { return openChatMsg{chatbot: rec.Name} }
		}
	case "z":
		if rec, ok := v.selected(); ok {
			return v, func() tea.Msg { return openQuizMsg{chatbot: rec.Name} }
		}
	case "n":
		v.form.active = true
		v.form.field = 0
		v.form.name.SetValue("")
		v.form.pdfs.SetValue("")
		v.form.name.Focus()
		v.form.pdfs.Blur()
		return v, textinput.Blink
	case "r":
		if rec, ok := v.selected(); ok {
			start := v.spinner.Start("Starting retrain of " + rec.Name)
			return v, tea.Batch(v.retrain(rec.Name), start)
		}
	case "d":
		if rec, ok := v.selected(); ok {
			v.confirm = rec.Name
		}
	case "L":
		deps := v.deps
		return v, func() tea.Msg {
			if err := deps.Selection.Logout(); err != nil {
				return errMsg{err: err}
			}
			return loggedOutMsg{}
		}
	case "g":
		return v, v.load()
	}
	return v, nil
}

func (v botsView) updateConfirm(msg tea.KeyMsg) (botsView, tea.Cmd) {
	name := v.confirm
	switch msg.String() {
	case "y", "Y":
		v.confirm = ""
		start := v.spinner.Start("Deleting " + name)
		return v, tea.Batch(v.delete(name), start)
	case "n", "N", "esc":
		v.confirm = ""
	}
	return v, nil
}

func (v botsView) updateForm(msg tea.KeyMsg) (botsView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.form.active = false
		v.form.name.Blur()
		v.form.pdfs.Blur()
		return v, nil
	case "tab", "shift+tab":
		v.form.field = 1 - v.form.field
		if v.form.field == 0 {
			v.form.name.Focus()
			v.form.pdfs.Blur()
		} else {
			v.form.pdfs.Focus()
			v.form.name.Blur()
		}
		return v, textinput.Blink
	case "enter":
		name := strings.TrimSpace(v.form.name.Value())
		pdfs := strings.Fields(v.form.pdfs.Value())
		v.form.active = false
		v.form.name.Blur()
		v.form.pdfs.Blur()
		start := v.spinner.Start("Starting training of " + name)
		return v, tea.Batch(v.create(name, pdfs), start)
	}

	var cmd tea.Cmd
	if v.form.field == 0 {
		v.form.name, cmd = v.form.name.Update(msg)
	} else {
		v.form.pdfs, cmd = v.form.pdfs.Update(msg)
	}
	return v, cmd
}

func (v botsView) selected() (registry.Record, bool) {
	item, ok := v.picker.Selected()
	if !ok {
		return registry.Record{}, false
	}
	for _, rec := range v.recs {
		if rec.Name == item.Label {
			return rec, true
		}
	}
	return registry.Record{}, false
}

func (v *botsView) refreshPicker() {
	items := make([]components.PickerItem, 0, len(v.recs))
	for _, rec := range v.recs {
		meta := "trained " + rec.LastTrainedAt.Format("2006-01-02 15:04")
		if !rec.IndexReady {
			meta += " (index pending)"
		}
		items = append(items, components.PickerItem{Label: rec.Name, Meta: meta})
	}
	v.picker.SetItems(items)
}

func (v botsView) create(name string, pdfs []string) tea.Cmd {
	deps := v.deps
	return func() tea.Msg {
		job, err := deps.Registry.Create(context.Background(), name, pdfs)
		return jobStartedMsg{job: job, err: err}
	}
}

func (v botsView) retrain(name string) tea.Cmd {
	deps := v.deps
	return func() tea.Msg {
		job, err := deps.Registry.Retrain(context.Background(), name)
		return jobStartedMsg{job: job, err: err}
	}
}

func (v botsView) delete(name string) tea.Cmd {
	deps := v.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, warning, err := deps.Registry.Delete(ctx, name)
		return botDeletedMsg{name: name, warning: warning, err: err}
	}
}

func (v botsView) view() string {
	var b strings.Builder
	b.WriteString(v.theme.Header.Render("docent"))
	b.WriteString("\n\n")
	b.WriteString(v.picker.View())
	b.WriteString("\n")

	if v.form.active {
		label := "name"
		if v.form.field == 1 {
			label = "documents"
		}
		b.WriteString(v.theme.InputContainer.Render(
			v.theme.InputPrompt.Render("train a new chatbot ("+label+")") + "\n" +
				v.form.name.View() + "\n" + v.form.pdfs.View()))
		b.WriteString("\n")
	}
	if v.confirm != "" {
		b.WriteString(v.theme.WarningStyle.Render(
			fmt.Sprintf("delete %q and its trained data? (y/n)", v.confirm)))
		b.WriteString("\n")
	}
	if s := v.spinner.View(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if v.warning != "" {
		b.WriteString(v.theme.WarningStyle.Render(v.warning))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(v.theme.ErrorBox.Render(
			v.theme.ErrorTitle.Render("Error") + "\n" +
				v.theme.ErrorMessage.Render(v.err.Error())))
		b.WriteString("\n")
	}
	return v.theme.Container.Render(b.String())
}
