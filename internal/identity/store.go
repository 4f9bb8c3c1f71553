// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity persists the user's organizational identity: the last
// selected company/team/part/employee tuple plus the organization tree
// snapshot. One JSON file, whole-file overwrites, self-healing reads.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/jeranaias/docent-tui/internal/orgtree"
	"github.com/jeranaias/docent-tui/internal/util"
)

// =============================================================================
// RECORD
// =============================================================================

// Record is the single persisted identity document.
type Record struct {
	Company      string      `json:"company"`
	Team         string      `json:"team"`
	Part         string      `json:"part"`
	EmployeeID   string      `json:"employee_id"`
	EmployeeList []string    `json:"employee_list"`
	Tree         orgtree.Tree `json:"tree"`
}

// DefaultRecord returns the documented empty default: all selection slots
// unset, no employees, empty tree.
func DefaultRecord() Record {
	return Record{
		EmployeeList: []string{},
		Tree:         orgtree.Tree{},
	}
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the on-disk identity record. It is the only writer of the file.
type Store struct {
	path string
}

// NewStore creates a store backed by identity.json under dataDir.
func NewStore(dataDir string) *Store {
	return &Store{path: filepath.Join(dataDir, "identity.json")}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the identity record. Missing or corrupt state is never an
// error: the empty default is returned and immediately written back so the
// file exists for the next launch. Only hard I/O faults during that
// write-back surface as an error, and callers may still use the returned
// default.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// No prior record: establish the default.
		def := DefaultRecord()
		return def, s.Save(def)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt record: reset rather than fail startup.
		def := DefaultRecord()
		return def, s.Save(def)
	}

	if rec.EmployeeList == nil {
		rec.EmployeeList = []string{}
	}
	if rec.Tree == nil {
		rec.Tree = orgtree.Tree{}
	}
	return rec, nil
}

// Save overwrites the record on disk. The write is atomic and fsynced:
// when Save returns nil the record survives an immediate crash.
func (s *Store) Save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path, data, 0644)
}
