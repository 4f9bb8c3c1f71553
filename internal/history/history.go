// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists chat transcripts per chatbot in a local SQLite
// database, so a conversation survives restarts and scope switches.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company    TEXT NOT NULL,
	team       TEXT NOT NULL,
	part       TEXT NOT NULL,
	chatbot    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	UNIQUE(company, team, part, chatbot)
);

CREATE TABLE IF NOT EXISTS turns (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	sources         TEXT NOT NULL DEFAULT '',
	created_at      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, id);
`

// =============================================================================
// STORE
// =============================================================================

// Turn is one persisted chat message.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
	// Sources is the rendered source summary attached to an assistant
	// answer, empty for user turns.
	Sources string
	At      time.Time
}

// Store is the transcript database. One conversation per
// (company, team, part, chatbot).
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the transcript database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// conversationID returns (creating if needed) the conversation row for a
// chatbot.
func (s *Store) conversationID(ctx context.Context, tx *sql.Tx, company, team, part, chatbot string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM conversations WHERE company = ? AND team = ? AND part = ? AND chatbot = ?",
		company, team, part, chatbot).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO conversations (company, team, part, chatbot, created_at) VALUES (?, ?, ?, ?, ?)",
		company, team, part, chatbot, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Append records one turn at the end of a chatbot's transcript.
func (s *Store) Append(ctx context.Context, company, team, part, chatbot string, turn Turn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := s.conversationID(ctx, tx, company, team, part, chatbot)
	if err != nil {
		return err
	}
	at := turn.At
	if at.IsZero() {
		at = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO turns (conversation_id, role, content, sources, created_at) VALUES (?, ?, ?, ?, ?)",
		id, turn.Role, turn.Content, turn.Sources, at.Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns a chatbot's transcript in insertion order. A chatbot with
// no transcript yields an empty slice.
func (s *Store) Load(ctx context.Context, company, team, part, chatbot string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.role, t.content, t.sources, t.created_at
		FROM turns t
		JOIN conversations c ON c.id = t.conversation_id
		WHERE c.company = ? AND c.team = ? AND c.part = ? AND c.chatbot = ?
		ORDER BY t.id`,
		company, team, part, chatbot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		var at int64
		if err := rows.Scan(&t.Role, &t.Content, &t.Sources, &at); err != nil {
			return nil, err
		}
		t.At = time.Unix(at, 0)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Clear deletes a chatbot's transcript, e.g. after the chatbot itself is
// deleted.
func (s *Store) Clear(ctx context.Context, company, team, part, chatbot string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE company = ? AND team = ? AND part = ? AND chatbot = ?",
		company, team, part, chatbot)
	return err
}
