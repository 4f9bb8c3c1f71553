// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// quizview.go - Comprehension quiz screen for one chatbot.
//
// Questions are shown one at a time. After answering, the result is
// revealed before moving on; 'm' requests another batch of questions
// from the backend once the current set is exhausted.

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/api"
	"github.com/jeranaias/docent-tui/internal/quiz"
	"github.com/jeranaias/docent-tui/internal/ui/components"
	"github.com/jeranaias/docent-tui/internal/ui/styles"
)

type quizReadyMsg struct {
	session *quiz.Session
	err     error
}

type quizExtendedMsg struct {
	err error
}

type quizView struct {
	deps    Deps
	theme   *styles.Theme
	chatbot string

	session *quiz.Session
	current int // index into session.Questions()
	cursor  int // highlighted choice
	// result of the question just answered; nil while choosing
	answered *bool

	spinner components.Spinner
	err     error
	width   int
	height  int
}

func newQuizView(deps Deps, theme *styles.Theme, chatbot string) quizView {
	return quizView{
		deps:    deps,
		theme:   theme,
		chatbot: chatbot,
		spinner: components.NewSpinner(theme),
	}
}

func (v *quizView) setSize(width, height int) {
	v.width = width
	v.height = height
}

// start fetches the question set.
func (v *quizView) start() tea.Cmd {
	load := v.load(false)
	return tea.Batch(load, v.spinner.Start("Generating quiz"))
}

func (v quizView) load(regenerate bool) tea.Cmd {
	deps := v.deps
	chatbot := v.chatbot
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		company, team, part := deps.Selection.Current().Scope()
		scope := api.Scope{Company: company, Team: team, Part: part}
		session, err := quiz.NewSession(ctx, deps.Client, scope, chatbot, regenerate)
		return quizReadyMsg{session: session, err: err}
	}
}

func (v quizView) extend() tea.Cmd {
	session := v.session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return quizExtendedMsg{err: session.Extend(ctx)}
	}
}

func (v quizView) update(msg tea.Msg) (quizView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.updateKeys(msg)

	case quizReadyMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.session = msg.session
		v.current = 0
		v.cursor = 0
		v.answered = nil
		v.err = nil
		return v, nil

	case quizExtendedMsg:
		v.spinner.Stop()
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		// Jump to the first unanswered question in the extended set.
		v.current = v.firstUnanswered()
		v.cursor = 0
		v.answered = nil
		return v, nil
	}

	var cmd tea.Cmd
	v.spinner, cmd = v.spinner.Update(msg)
	return v, cmd
}

func (v quizView) updateKeys(msg tea.KeyMsg) (quizView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg { return backToBotsMsg{} }
	}
	if v.session == nil {
		return v, nil
	}
	questions := v.session.Questions()

	switch msg.String() {
	case "m":
		if v.spinner.Active() {
			return v, nil
		}
		return v, tea.Batch(v.extend(), v.spinner.Start("Generating more questions"))
	case "R":
		if v.spinner.Active() {
			return v, nil
		}
		return v, tea.Batch(v.load(true), v.spinner.Start("Regenerating quiz"))
	}
	if v.current >= len(questions) {
		return v, nil
	}
	q := questions[v.current]

	// After the reveal, any of these advances to the next question.
	if v.answered != nil {
		switch msg.String() {
		case "enter", " ", "n":
			v.answered = nil
			v.cursor = 0
			v.current++
		}
		return v, nil
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(q.Choices)-1 {
			v.cursor++
		}
	case "enter":
		correct, err := v.session.Answer(q.ID, v.cursor)
		if err != nil {
			v.err = err
			return v, nil
		}
		v.answered = &correct
	}
	return v, nil
}

func (v quizView) firstUnanswered() int {
	questions := v.session.Questions()
	for i, q := range questions {
		if _, ok := v.session.Answered(q.ID); !ok {
			return i
		}
	}
	return len(questions)
}

func (v quizView) view() string {
	var b strings.Builder
	b.WriteString(v.theme.Header.Render("quiz: " + v.chatbot))
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(v.theme.ErrorBox.Render(
			v.theme.ErrorTitle.Render("Quiz error") + "\n" +
				v.theme.ErrorMessage.Render(v.err.Error())))
		b.WriteString("\n")
	}
	if s := v.spinner.View(); s != "" {
		b.WriteString(s)
		return v.theme.Container.Render(b.String())
	}
	if v.session == nil {
		return v.theme.Container.Render(b.String())
	}

	questions := v.session.Questions()
	if v.current >= len(questions) {
		b.WriteString(v.renderScore())
		b.WriteString("\n")
		b.WriteString(v.theme.HeaderSubtitle.Render("m more questions · R regenerate · esc back"))
		return v.theme.Container.Render(b.String())
	}

	q := questions[v.current]
	b.WriteString(v.theme.HeaderSubtitle.Render(
		fmt.Sprintf("question %d of %d", v.current+1, len(questions))))
	b.WriteString("\n\n")
	b.WriteString(v.theme.QuizQuestion.Render(q.Question))
	b.WriteString("\n\n")
	for i, choice := range q.Choices {
		line := fmt.Sprintf("%d. %s", i+1, choice)
		if i == v.cursor {
			b.WriteString(v.theme.QuizChoiceSelected.Render("> " + line))
		} else {
			b.WriteString(v.theme.QuizChoice.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if v.answered != nil {
		b.WriteString("\n")
		if *v.answered {
			b.WriteString(v.theme.QuizCorrect.Render("Correct!"))
		} else {
			b.WriteString(v.theme.QuizIncorrect.Render(
				fmt.Sprintf("Incorrect. The answer is: %s", q.Choices[q.AnswerIndex])))
		}
		b.WriteString("\n")
		b.WriteString(v.theme.HeaderSubtitle.Render("enter to continue"))
	}
	return v.theme.Container.Render(b.String())
}

func (v quizView) renderScore() string {
	correct, answered, total := v.session.Score()
	return v.theme.QuizScore.Render(
		fmt.Sprintf("Score: %d/%d (%d questions)", correct, answered, total))
}
