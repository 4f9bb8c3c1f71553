// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// train.go - Training log screen.
//
// Subscribes to a running job and appends each log line to a viewport
// as it arrives. The subscription delivers every line in emission order
// and exactly one terminal event at the end, so the screen simply waits
// for events until the terminal one and then stops pumping.

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/training"
	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// trainEventMsg is one delivery from the job subscription.
type trainEventMsg struct {
	event training.Event
	ok    bool // false when the channel closed
}

type trainView struct {
	deps  Deps
	theme *styles.Theme

	job    *training.Job
	events <-chan training.Event
	cancel func()

	vp      viewport.Model
	lines   []string
	final   training.Status
	done    bool
	spinner components.Spinner

	width  int
	height int
}

func newTrainView(deps Deps, theme *styles.Theme, job *training.Job) trainView {
	vp := viewport.New(80, 20)
	return trainView{
		deps:    deps,
		theme:   theme,
		job:     job,
		vp:      vp,
		spinner: components.NewSpinner(theme),
	}
}

func (v *trainView) setSize(width, height int) {
	v.width = width
	v.height = height
	// Header, border, and status bar take a few rows.
	h := height - 8
	if h < 5 {
		h = 5
	}
	w := width - 6
	if w < 20 {
		w = 20
	}
	v.vp.Width = w
	v.vp.Height = h
}

// start subscribes to the job and begins pumping events.
func (v *trainView) start() tea.Cmd {
	v.events, v.cancel = v.job.Subscribe()
	return tea.Batch(v.waitForEvent(), v.spinner.Start("Training "+v.job.Name))
}

// waitForEvent blocks on the subscription channel for one event.
func (v trainView) waitForEvent() tea.Cmd {
	events := v.events
	return func() tea.Msg {
		ev, ok := <-events
		return trainEventMsg{event: ev, ok: ok}
	}
}

func (v trainView) update(msg tea.Msg) (trainView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			if v.cancel != nil {
				v.cancel()
			}
			return v, func() tea.Msg { return backToBotsMsg{} }
		}

	case trainEventMsg:
		if !msg.ok {
			return v, nil
		}
		if msg.event.Terminal {
			v.done = true
			v.final = msg.event.Status
			v.spinner.Stop()
			return v, nil
		}
		if msg.event.Line != nil {
			v.lines = append(v.lines, v.renderLine(*msg.event.Line))
			v.vp.SetContent(strings.Join(v.lines, "\n"))
			v.vp.GotoBottom()
		}
		return v, v.waitForEvent()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.vp, cmd = v.vp.Update(msg)
	cmds = append(cmds, cmd)
	v.spinner, cmd = v.spinner.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v trainView) renderLine(line training.LogLine) string {
	switch line.Kind {
	case training.LineInfo:
		return v.theme.LogInfoLine.Render(line.Text)
	case training.LineErrorOutput:
		return v.theme.LogErrorLine.Render(line.Text)
	default:
		return v.theme.LogOutputLine.Render(line.Text)
	}
}

func (v trainView) view() string {
	var b strings.Builder
	b.WriteString(v.theme.Header.Render("training " + v.job.Name))
	b.WriteString("\n")
	b.WriteString(v.theme.LogBox.Render(v.vp.View()))
	b.WriteString("\n")

	if v.done {
		switch v.final {
		case training.StatusSucceeded:
			b.WriteString(v.theme.SuccessStyle.Render("training complete"))
		default:
			msg := "training failed"
			if diag := v.job.Diagnostic(); diag != "" {
				msg += ": " + diag
			}
			b.WriteString(v.theme.ErrorStyle.Render(msg))
		}
		b.WriteString(" " + v.theme.HeaderSubtitle.Render("(esc to go back)"))
	} else if s := v.spinner.View(); s != "" {
		b.WriteString(s)
	}
	return v.theme.Container.Render(b.String())
}
