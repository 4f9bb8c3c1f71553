// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jeranaias/docent-tui/internal/orgtree"
)

func TestStore_LoadMissingSelfHeals(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Company != "" || rec.Team != "" || rec.Part != "" || rec.EmployeeID != "" {
		t.Errorf("default record has non-empty selection: %+v", rec)
	}
	if len(rec.Tree) != 0 {
		t.Errorf("default tree = %v, want empty", rec.Tree)
	}

	// The default must now exist on disk.
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("identity file not established: %v", err)
	}
}

func TestStore_LoadIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.Load()
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	second, err := store.Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Load differs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	rec := Record{
		Company:      "Acme",
		Team:         "Eng",
		Part:         "Backend",
		EmployeeID:   "E100",
		EmployeeList: []string{"E100", "E200"},
		Tree: orgtree.Tree{
			{Name: "Acme", Teams: []orgtree.Team{
				{Name: "Eng", Parts: []orgtree.Part{
					{Name: "Backend", Employees: []string{"E100", "E200"}},
				}},
			}},
		},
	}

	if err := store.Save(rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(rec, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", rec, loaded)
	}
}

func TestStore_CorruptFileResetsToDefault(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rec.Company != "" || len(rec.Tree) != 0 {
		t.Errorf("corrupt load returned non-default: %+v", rec)
	}

	// The reset default must have been persisted.
	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read after reset: %v", err)
	}
	if string(data) == "{not json" {
		t.Error("corrupt file was not replaced with the default")
	}
}

func TestStore_SaveOverwritesWholeRecord(t *testing.T) {
	store := NewStore(t.TempDir())

	if err := store.Save(Record{Company: "Acme", Team: "Eng", EmployeeList: []string{}, Tree: orgtree.Tree{}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// A later save with fewer fields set must not merge with the prior one.
	if err := store.Save(Record{Company: "Other", EmployeeList: []string{}, Tree: orgtree.Tree{}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Company != "Other" || loaded.Team != "" {
		t.Errorf("loaded = %+v, want full overwrite", loaded)
	}
}

func TestStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not", "yet", "created")
	store := NewStore(dir)

	if err := store.Save(DefaultRecord()); err != nil {
		t.Fatalf("Save into missing dir failed: %v", err)
	}
}
