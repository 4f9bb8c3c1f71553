// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chatview.go - Conversation screen for one chatbot.
//
// The transcript lives in a viewport above a single-line input. One
// question is in flight at a time; the input is disabled while the
// backend is working.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/docent-tui/internal/api"
	"github.com/jeranaias/docent-tui/internal/chat"
	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

type sessionReadyMsg struct {
	session *chat.Session
	err     error
}

type answerMsg struct {
	err error
}

type historyClearedMsg struct {
	err error
}

type chatView struct {
	deps    Deps
	theme   *styles.Theme
	chatbot string

	session  *chat.Session
	renderer *glamour.TermRenderer

	vp      viewport.Model
	input   textinput.Model
	spinner components.Spinner
	waiting bool
	err     error

	width  int
	height int
}

func newChatView(deps Deps, theme *styles.Theme, chatbot string) chatView {
	input := textinput.New()
	input.Placeholder = "ask a question"
	input.CharLimit = 2000
	input.Prompt = theme.InputPrompt.Render("> ")

	v := chatView{
		deps:    deps,
		theme:   theme,
		chatbot: chatbot,
		vp:      viewport.New(80, 20),
		input:   input,
		spinner: components.NewSpinner(theme),
	}
	if deps.Config.UI.RenderMarkdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(76),
		)
		if err == nil {
			v.renderer = r
		}
	}
	return v
}

func (v *chatView) setSize(width, height int) {
	v.width = width
	v.height = height
	h := height - 9
	if h < 5 {
		h = 5
	}
	w := width - 6
	if w < 20 {
		w = 20
	}
	v.vp.Width = w
	v.vp.Height = h
	v.input.Width = w - 4
}

// start loads the saved transcript and focuses the input.
func (v *chatView) start() tea.Cmd {
	deps := v.deps
	chatbot := v.chatbot
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		company, team, part := deps.Selection.Current().Scope()
		scope := api.Scope{Company: company, Team: team, Part: part}
		session, err := chat.NewSession(ctx, deps.Client, deps.History, scope, chatbot)
		return sessionReadyMsg{session: session, err: err}
	}
	return tea.Batch(load, v.input.Focus(), textinput.Blink)
}

func (v chatView) update(msg tea.Msg) (chatView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return backToBotsMsg{} }
		case "enter":
			if v.waiting || v.session == nil {
				return v, nil
			}
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.input.Reset()
			v.waiting = true
			v.err = nil
			return v, tea.Batch(v.ask(question), v.spinner.Start("Thinking"))
		case "ctrl+r":
			if v.waiting || v.session == nil {
				return v, nil
			}
			return v, v.clearHistory()
		}

	case sessionReadyMsg:
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.session = msg.session
		v.refresh()
		return v, nil

	case answerMsg:
		v.waiting = false
		v.spinner.Stop()
		v.err = msg.err
		v.refresh()
		return v, nil

	case historyClearedMsg:
		v.err = msg.err
		v.refresh()
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	v.vp, cmd = v.vp.Update(msg)
	cmds = append(cmds, cmd)
	v.spinner, cmd = v.spinner.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v chatView) ask(question string) tea.Cmd {
	session := v.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		_, err := session.Ask(ctx, question)
		return answerMsg{err: err}
	}
}

func (v chatView) clearHistory() tea.Cmd {
	session := v.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return historyClearedMsg{err: session.Reset(ctx)}
	}
}

// refresh re-renders the transcript into the viewport.
func (v *chatView) refresh() {
	if v.session == nil {
		return
	}
	var parts []string
	for _, msg := range v.session.Messages() {
		parts = append(parts, v.renderMessage(msg))
	}
	v.vp.SetContent(strings.Join(parts, "\n\n"))
	v.vp.GotoBottom()
}

func (v *chatView) renderMessage(msg chat.Message) string {
	if msg.Role == "user" {
		w := v.vp.Width * 3 / 4
		if w < 20 {
			w = 20
		}
		bubble := v.theme.UserBubble.Width(w).Render(msg.Content)
		return lipgloss.PlaceHorizontal(v.vp.Width, lipgloss.Right, bubble)
	}

	body := msg.Content
	if v.renderer != nil {
		if rendered, err := v.renderer.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}
	out := v.theme.AssistantBubble.Render(body)
	if v.deps.Config.UI.ShowSources && len(msg.Sources) > 0 {
		var refs []string
		for _, src := range msg.Sources {
			refs = append(refs, fmt.Sprintf("%s p.%d", src.File, src.Page))
		}
		out += "\n" + v.theme.SourceLine.Render("sources: "+strings.Join(refs, ", "))
	}
	return out
}

func (v chatView) view() string {
	var b strings.Builder
	b.WriteString(v.theme.Header.Render(v.chatbot))
	b.WriteString("\n")
	b.WriteString(v.vp.View())
	b.WriteString("\n")
	if s := v.spinner.View(); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(v.theme.InputContainer.Render(v.input.View()))
	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.theme.ErrorBox.Render(
			v.theme.ErrorTitle.Render("Request failed") + "\n" +
				v.theme.ErrorMessage.Render(v.err.Error())))
	}
	return v.theme.Container.Render(b.String())
}
