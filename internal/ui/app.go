// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Root Bubble Tea model for the docent TUI.
//
// The TUI is a small screen machine: login until the selection is
// complete, then the chatbot list, with training, chat, and quiz
// screens layered on top of it. Every screen shares one theme and one
// status bar; the root model routes messages to the active screen.

package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/api"
	"github.com/jeranaias/docent-tui/internal/config"
	"github.com/jeranaias/docent-tui/internal/history"
	"github.com/jeranaias/docent-tui/internal/orgtree"
	"github.com/jeranaias/docent-tui/internal/registry"
	"github.com/jeranaias/docent-tui/internal/selection"
	"github.com/jeranaias/docent-tui/internal/training"
	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps is everything the TUI needs from the outside. The caller wires
// these once and hands them over; the TUI owns no construction logic.
type Deps struct {
	Config    *config.Config
	Client    *api.Client
	Selection *selection.Machine
	Tree      *orgtree.Cache
	Registry  *registry.Registry
	History   *history.Store // nil when chat history is disabled
}

// =============================================================================
// SCREENS
// =============================================================================

type screen int

const (
	screenLogin screen = iota
	screenBots
	screenTrain
	screenChat
	screenQuiz
)

// =============================================================================
// ROOT MODEL
// =============================================================================

// Model is the root TUI model.
type Model struct {
	deps  Deps
	theme *styles.Theme

	screen    screen
	login     loginView
	bots      botsView
	train     trainView
	chat      chatView
	quiz      quizView
	statusbar components.StatusBar

	width  int
	height int
	err    error
}

// New creates the root model. The starting screen depends on whether a
// complete selection was restored from the identity store.
func New(deps Deps) Model {
	theme := styles.NewThemeWithPreference(deps.Config.UI.Theme)

	m := Model{
		deps:      deps,
		theme:     theme,
		login:     newLoginView(deps, theme),
		bots:      newBotsView(deps, theme),
		statusbar: components.NewStatusBar(theme),
	}

	if deps.Selection.Current().Complete() {
		m.screen = screenBots
	} else {
		m.screen = screenLogin
	}
	m.syncStatusBar()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.screen == screenBots {
		return m.bots.load()
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.statusbar.SetWidth(msg.Width)
		m.login.setSize(msg.Width, msg.Height)
		m.bots.setSize(msg.Width, msg.Height)
		m.train.setSize(msg.Width, msg.Height)
		m.chat.setSize(msg.Width, msg.Height)
		m.quiz.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case errMsg:
		m.err = msg.err
		return m, nil

	case loggedInMsg:
		sel := m.deps.Selection.Current()
		m.deps.Registry.SetScope(registry.Scope{
			Company: sel.Company, Team: sel.Team, Part: sel.Part,
		})
		m.screen = screenBots
		m.err = nil
		m.syncStatusBar()
		return m, m.bots.load()

	case loggedOutMsg:
		m.deps.Registry.SetScope(registry.Scope{})
		m.screen = screenLogin
		m.login = newLoginView(m.deps, m.theme)
		m.login.setSize(m.width, m.height)
		m.syncStatusBar()
		return m, nil

	case openTrainMsg:
		m.train = newTrainView(m.deps, m.theme, msg.job)
		m.train.setSize(m.width, m.height)
		m.screen = screenTrain
		m.syncStatusBar()
		return m, m.train.start()

	case openChatMsg:
		m.chat = newChatView(m.deps, m.theme, msg.chatbot)
		m.chat.setSize(m.width, m.height)
		m.screen = screenChat
		m.syncStatusBar()
		return m, m.chat.start()

	case openQuizMsg:
		m.quiz = newQuizView(m.deps, m.theme, msg.chatbot)
		m.quiz.setSize(m.width, m.height)
		m.screen = screenQuiz
		m.syncStatusBar()
		return m, m.quiz.start()

	case backToBotsMsg:
		m.screen = screenBots
		m.err = nil
		m.syncStatusBar()
		return m, m.bots.load()
	}

	var cmd tea.Cmd
	switch m.screen {
	case screenLogin:
		m.login, cmd = m.login.update(msg)
	case screenBots:
		m.bots, cmd = m.bots.update(msg)
	case screenTrain:
		m.train, cmd = m.train.update(msg)
	case screenChat:
		m.chat, cmd = m.chat.update(msg)
	case screenQuiz:
		m.quiz, cmd = m.quiz.update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.view()
	case screenBots:
		body = m.bots.view()
	case screenTrain:
		body = m.train.view()
	case screenChat:
		body = m.chat.view()
	case screenQuiz:
		body = m.quiz.view()
	}

	if m.err != nil {
		body += "\n" + m.theme.ErrorBox.Render(
			m.theme.ErrorTitle.Render("Error")+"\n"+
				m.theme.ErrorMessage.Render(m.err.Error()))
	}

	return m.theme.App.Render(body + "\n" + m.statusbar.View())
}

// syncStatusBar refreshes the scope label and key hints for the
// current screen.
func (m *Model) syncStatusBar() {
	sel := m.deps.Selection.Current()
	if sel.Company != "" {
		m.statusbar.SetScope(fmt.Sprintf("%s / %s / %s", sel.Company, sel.Team, sel.Part))
	} else {
		m.statusbar.SetScope("")
	}

	switch m.screen {
	case screenLogin:
		m.statusbar.SetShortcuts([]components.Shortcut{
			{Key: "↑/↓", Desc: "move"}, {Key: "enter", Desc: "select"},
			{Key: "a", Desc: "add"}, {Key: "esc", Desc: "back"}, {Key: "ctrl+c", Desc: "quit"},
		})
	case screenBots:
		m.statusbar.SetShortcuts([]components.Shortcut{
			{Key: "enter", Desc: "chat"}, {Key: "n", Desc: "new"}, {Key: "r", Desc: "retrain"},
			{Key: "z", Desc: "quiz"}, {Key: "d", Desc: "delete"}, {Key: "L", Desc: "logout"},
		})
	case screenTrain:
		m.statusbar.SetShortcuts([]components.Shortcut{
			{Key: "esc", Desc: "back"},
		})
	case screenChat:
		m.statusbar.SetShortcuts([]components.Shortcut{
			{Key: "enter", Desc: "send"}, {Key: "ctrl+r", Desc: "reset"}, {Key: "esc", Desc: "back"},
		})
	case screenQuiz:
		m.statusbar.SetShortcuts([]components.Shortcut{
			{Key: "↑/↓", Desc: "choice"}, {Key: "enter", Desc: "answer"},
			{Key: "m", Desc: "more"}, {Key: "esc", Desc: "back"},
		})
	}
}

// =============================================================================
// SHARED MESSAGES
// =============================================================================

// errMsg surfaces an error in the root error box.
type errMsg struct{ err error }

// loggedInMsg fires when the login view completes all four levels.
type loggedInMsg struct{}

// loggedOutMsg fires when the user logs out from the chatbot list.
type loggedOutMsg struct{}

// openTrainMsg switches to the training log screen for a started job.
type openTrainMsg struct{ job *training.Job }

// openChatMsg switches to the chat screen for a chatbot.
type openChatMsg struct{ chatbot string }

// openQuizMsg switches to the quiz screen for a chatbot.
type openQuizMsg struct{ chatbot string }

// backToBotsMsg returns to the chatbot list and reloads it.
type backToBotsMsg struct{}
