// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/docent-tui/internal/training"
	"github.com/jeranaias/docent-tui/internal/util"
)

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists the catalog in <data>/chatbots.json, one flat array
// for every scope, rewritten whole on each change. Trained data lives in
// per-chatbot folders under <data>/chatbots.
type FileStore struct {
	dataDir string
	mu      sync.Mutex
}

// NewFileStore creates a file store rooted at the docent data directory.
func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dataDir, "chatbots.json")
}

// load reads the full catalog. A missing file is an empty catalog; a
// corrupt file is reset to empty on the next save rather than blocking
// every operation behind a parse error.
func (s *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, nil
	}
	return recs, nil
}

func (s *FileStore) save(recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path(), data, 0o644)
}

// List returns the records in a scope. Readiness is derived from the index
// file on disk at list time.
func (s *FileStore) List(_ context.Context, scope Scope) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range recs {
		if rec.Scope() != scope {
			continue
		}
		idx := rec.IndexPath
		if idx == "" {
			idx = training.IndexFile(training.BotDir(s.dataDir, rec.Company, rec.Team, rec.Part, rec.Name))
		}
		_, statErr := os.Stat(idx)
		rec.IndexReady = statErr == nil
		out = append(out, rec)
	}
	return out, nil
}

// Put inserts or replaces the record for (scope, name).
func (s *FileStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range recs {
		if recs[i].Scope() == rec.Scope() && recs[i].Name == rec.Name {
			recs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append(recs, rec)
	}
	return s.save(recs)
}

// Delete removes the metadata entry and then attempts to remove the
// trained-data folder. Metadata removal is the authoritative part; a
// folder that cannot be removed downgrades the result to DeleteMetaOnly
// with a warning instead of failing the whole operation.
func (s *FileStore) Delete(_ context.Context, scope Scope, name string) (DeleteOutcome, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return DeleteFailed, "", err
	}
	kept := recs[:0]
	found := false
	for _, rec := range recs {
		if rec.Scope() == scope && rec.Name == name {
			found = true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return DeleteFailed, "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := s.save(kept); err != nil {
		return DeleteFailed, "", err
	}

	botDir := training.BotDir(s.dataDir, scope.Company, scope.Team, scope.Part, name)
	if _, err := os.Stat(botDir); os.IsNotExist(err) {
		return DeleteMetaOnly, fmt.Sprintf("chatbot removed from the list, but no trained data was found at %s", botDir), nil
	}
	if err := os.RemoveAll(botDir); err != nil {
		return DeleteMetaOnly, fmt.Sprintf("chatbot removed from the list, but its trained data could not be deleted: %v", err), nil
	}
	return Deleted, "", nil
}
