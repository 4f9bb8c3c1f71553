// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat runs a question/answer session against one trained chatbot:
// it carries the running history into every request so the backend can
// resolve follow-up questions, and persists both sides of the exchange.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/docent-tui/internal/api"
	"github.com/jeranaias/docent-tui/internal/history"
)

// =============================================================================
// SESSION
// =============================================================================

// Message is one rendered transcript entry.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Sources []api.Source
}

// Session is a conversation with one chatbot. Not safe for concurrent use;
// the UI serializes questions anyway (one in flight at a time).
type Session struct {
	client  *api.Client
	store   *history.Store // optional
	scope   api.Scope
	chatbot string
	turns   []api.ChatTurn
	msgs    []Message
}

// NewSession opens a session, restoring any persisted transcript. A nil
// store means the conversation lives only in memory.
func NewSession(ctx context.Context, client *api.Client, store *history.Store, scope api.Scope, chatbot string) (*Session, error) {
	s := &Session{client: client, store: store, scope: scope, chatbot: chatbot}
	if store != nil {
		saved, err := store.Load(ctx, scope.Company, scope.Team, scope.Part, chatbot)
		if err != nil {
			return nil, fmt.Errorf("load transcript: %w", err)
		}
		for _, turn := range saved {
			s.turns = append(s.turns, api.ChatTurn{Role: turn.Role, Content: turn.Content})
			s.msgs = append(s.msgs, Message{Role: turn.Role, Content: turn.Content})
		}
	}
	return s, nil
}

// Chatbot returns the session's chatbot name.
func (s *Session) Chatbot() string { return s.chatbot }

// Messages returns the transcript so far, oldest first.
func (s *Session) Messages() []Message {
	return append([]Message{}, s.msgs...)
}

// Ask sends a question with the running history attached and appends both
// the question and the answer to the transcript. On error nothing is
// appended, so a retry resends the same state.
func (s *Session) Ask(ctx context.Context, question string) (*Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	answer, err := s.client.Chat(ctx, s.scope, s.chatbot, question, s.turns)
	if err != nil {
		return nil, err
	}

	userMsg := Message{Role: "user", Content: question}
	botMsg := Message{Role: "assistant", Content: answer.Answer, Sources: answer.Sources}
	s.turns = append(s.turns,
		api.ChatTurn{Role: "user", Content: question},
		api.ChatTurn{Role: "assistant", Content: answer.Answer},
	)
	s.msgs = append(s.msgs, userMsg, botMsg)

	if s.store != nil {
		// Persistence failures do not undo the exchange; the answer is
		// already on screen.
		s.store.Append(ctx, s.scope.Company, s.scope.Team, s.scope.Part, s.chatbot,
			history.Turn{Role: "user", Content: question})
		s.store.Append(ctx, s.scope.Company, s.scope.Team, s.scope.Part, s.chatbot,
			history.Turn{Role: "assistant", Content: answer.Answer, Sources: FormatSources(answer.Sources)})
	}
	return &botMsg, nil
}

// Reset drops the running history, both in memory and on disk.
func (s *Session) Reset(ctx context.Context) error {
	s.turns = nil
	s.msgs = nil
	if s.store != nil {
		return s.store.Clear(ctx, s.scope.Company, s.scope.Team, s.scope.Part, s.chatbot)
	}
	return nil
}

// FormatSources renders a compact one-line source summary for an answer,
// e.g. "handbook.pdf p.4, p.7".
func FormatSources(sources []api.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var parts []string
	lastFile := ""
	for _, src := range sources {
		page := fmt.Sprintf("p.%d", src.Page)
		if src.File != "" && src.File != lastFile {
			parts = append(parts, src.File+" "+page)
			lastFile = src.File
		} else {
			parts = append(parts, page)
		}
	}
	return strings.Join(parts, ", ")
}
