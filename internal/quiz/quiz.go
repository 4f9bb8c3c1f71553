// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quiz runs a self-test session over the question set the backend
// generates from a chatbot's documents.
package quiz

import (
	"context"
	"fmt"

	"github.com/jeranaias/docent-tui/internal/api"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is one self-test run against a chatbot's generated questions.
// Answers are tracked per question so the score survives navigation.
type Session struct {
	client    *api.Client
	scope     api.Scope
	chatbot   string
	questions []api.QuizQuestion
	answers   map[string]int // question ID -> chosen index
}

// NewSession fetches (or generates) the question set for a chatbot. With
// regenerate set the backend discards its cached set and builds a new one.
func NewSession(ctx context.Context, client *api.Client, scope api.Scope, chatbot string, regenerate bool) (*Session, error) {
	res, err := client.GenerateQuiz(ctx, scope, chatbot, regenerate)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:    client,
		scope:     scope,
		chatbot:   chatbot,
		questions: res.Questions,
		answers:   make(map[string]int),
	}, nil
}

// Questions returns the current question set in order.
func (s *Session) Questions() []api.QuizQuestion {
	return append([]api.QuizQuestion{}, s.questions...)
}

// Answer records the chosen option for a question and reports whether it
// was correct. Re-answering replaces the previous choice.
func (s *Session) Answer(questionID string, choice int) (bool, error) {
	for _, q := range s.questions {
		if q.ID != questionID {
			continue
		}
		if choice < 0 || choice >= len(q.Choices) {
			return false, fmt.Errorf("choice %d out of range for question %s", choice, questionID)
		}
		s.answers[questionID] = choice
		return choice == q.AnswerIndex, nil
	}
	return false, fmt.Errorf("unknown question %s", questionID)
}

// Answered returns the recorded choice for a question, if any.
func (s *Session) Answered(questionID string) (int, bool) {
	choice, ok := s.answers[questionID]
	return choice, ok
}

// Score tallies correct answers over answered questions.
func (s *Session) Score() (correct, answered, total int) {
	total = len(s.questions)
	for _, q := range s.questions {
		choice, ok := s.answers[q.ID]
		if !ok {
			continue
		}
		answered++
		if choice == q.AnswerIndex {
			correct++
		}
	}
	return correct, answered, total
}

// Extend asks the backend for additional questions appended to the set.
// Existing answers are kept; the backend returns the full updated set.
func (s *Session) Extend(ctx context.Context) error {
	res, err := s.client.AppendQuiz(ctx, s.scope, s.chatbot)
	if err != nil {
		return err
	}
	s.questions = res.Questions
	s.pruneAnswers()
	return nil
}

// Remove deletes one question from the backend's set and drops its
// recorded answer.
func (s *Session) Remove(ctx context.Context, questionID string) error {
	res, err := s.client.DeleteQuizQuestion(ctx, s.scope, s.chatbot, questionID)
	if err != nil {
		return err
	}
	s.questions = res.Questions
	s.pruneAnswers()
	return nil
}

// pruneAnswers drops answers for questions no longer in the set.
func (s *Session) pruneAnswers() {
	known := make(map[string]bool, len(s.questions))
	for _, q := range s.questions {
		known[q.ID] = true
	}
	for id := range s.answers {
		if !known[id] {
			delete(s.answers, id)
		}
	}
}
