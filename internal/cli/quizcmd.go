// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// quizcmd.go - interactive quiz command.
//
// "docent quiz NAME" fetches (or regenerates) quiz questions built from
// the chatbot's documents and walks through them one at a time, scoring
// as it goes. In JSON mode the questions are printed without answers
// for external tooling.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/docent-tui/internal/quiz"
)

// quizQuestionData is one question in the quiz command's JSON payload.
// The answer index is deliberately omitted.
type quizQuestionData struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// HandleQuiz handles the "quiz" command.
func HandleQuiz(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	scope, err := app.RequireScope()
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	name := parser.Positional(0)
	if name == "" {
		return NewValidationError("chatbot name", "", "usage: docent quiz NAME [--regenerate]")
	}

	ctx := context.Background()

	if _, err := app.Registry.Get(ctx, name); err != nil {
		return err
	}

	session, err := quiz.NewSession(ctx, app.Client, scope, name, parser.BoolFlag("regenerate"))
	if err != nil {
		return err
	}

	if args.JSON {
		questions := session.Questions()
		data := make([]quizQuestionData, 0, len(questions))
		for _, q := range questions {
			data = append(data, quizQuestionData{ID: q.ID, Question: q.Question, Choices: q.Choices})
		}
		return NewJSONResponse("quiz", data).Print()
	}

	if !IsTTY() {
		return fmt.Errorf("the quiz is interactive and needs a terminal; use --json to fetch the questions")
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Quiz - %s", name)))

	for {
		if err := runQuizRound(session); err != nil {
			return err
		}

		correct, answered, total := session.Score()
		fmt.Println()
		fmt.Println(RenderSeparator(40))
		fmt.Printf("Score: %s %s\n",
			HighlightStyle.Render(fmt.Sprintf("%d / %d", correct, answered)),
			DimStyle.Render(fmt.Sprintf("(%d questions)", total)))

		if !PromptYesNo("Generate more questions?") {
			return nil
		}
		if err := session.Extend(ctx); err != nil {
			return err
		}
	}
}

// runQuizRound asks every not-yet-answered question once.
func runQuizRound(session *quiz.Session) error {
	for _, q := range session.Questions() {
		if _, done := session.Answered(q.ID); done {
			continue
		}

		choice := PromptChoice(SectionStyle.Render(q.Question), q.Choices)
		if choice < 0 {
			fmt.Println(DimStyle.Render("skipped"))
			continue
		}

		right, err := session.Answer(q.ID, choice)
		if err != nil {
			return err
		}
		if right {
			fmt.Println(SuccessStyle.Render("Correct!"))
		} else {
			fmt.Println(ErrorStyle.Render("Incorrect.") + " " +
				DimStyle.Render("answer: "+q.Choices[q.AnswerIndex]))
		}
	}
	return nil
}
