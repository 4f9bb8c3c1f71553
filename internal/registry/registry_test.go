// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/docent-tui/internal/training"
)

var scopeA = Scope{Company: "acme", Team: "eng", Part: "line-1"}
var scopeB = Scope{Company: "acme", Team: "sales", Part: "emea"}

func record(scope Scope, name string, created time.Time) Record {
	return Record{
		Name:    name,
		Company: scope.Company, Team: scope.Team, Part: scope.Part,
		CreatedAt: created, LastTrainedAt: created,
	}
}

// =============================================================================
// FILE STORE TESTS
// =============================================================================

func TestFileStorePutListScoped(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	base := time.Now()
	if err := s.Put(ctx, record(scopeA, "alpha", base)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, record(scopeA, "beta", base.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, record(scopeB, "gamma", base)); err != nil {
		t.Fatal(err)
	}

	recs, err := s.List(ctx, scopeA)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Name != "alpha" || recs[1].Name != "beta" {
		t.Errorf("scope A list = %v", recs)
	}
	other, err := s.List(ctx, scopeB)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 1 || other[0].Name != "gamma" {
		t.Errorf("scope B list = %v", other)
	}
}

func TestFileStorePutReplacesExisting(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	created := time.Now().Add(-time.Hour)
	if err := s.Put(ctx, record(scopeA, "alpha", created)); err != nil {
		t.Fatal(err)
	}
	updated := record(scopeA, "alpha", created)
	updated.LastTrainedAt = time.Now()
	if err := s.Put(ctx, updated); err != nil {
		t.Fatal(err)
	}

	recs, _ := s.List(ctx, scopeA)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if !recs[0].LastTrainedAt.After(recs[0].CreatedAt) {
		t.Error("LastTrainedAt not bumped on replace")
	}
}

func TestFileStoreIndexReadyDerivedFromDisk(t *testing.T) {
	dataDir := t.TempDir()
	s := NewFileStore(dataDir)
	ctx := context.Background()

	if err := s.Put(ctx, record(scopeA, "alpha", time.Now())); err != nil {
		t.Fatal(err)
	}
	recs, _ := s.List(ctx, scopeA)
	if recs[0].IndexReady {
		t.Error("IndexReady true with no index on disk")
	}

	indexDir := filepath.Join(training.BotDir(dataDir, "acme", "eng", "line-1", "alpha"), "index")
	os.MkdirAll(indexDir, 0o755)
	os.WriteFile(filepath.Join(indexDir, "faiss.index"), []byte("idx"), 0o644)

	recs, _ = s.List(ctx, scopeA)
	if !recs[0].IndexReady {
		t.Error("IndexReady false with index present")
	}
}

func TestFileStoreDeleteRemovesDataFolder(t *testing.T) {
	dataDir := t.TempDir()
	s := NewFileStore(dataDir)
	ctx := context.Background()

	if err := s.Put(ctx, record(scopeA, "alpha", time.Now())); err != nil {
		t.Fatal(err)
	}
	botDir := training.BotDir(dataDir, "acme", "eng", "line-1", "alpha")
	os.MkdirAll(filepath.Join(botDir, "source_data"), 0o755)
	os.WriteFile(filepath.Join(botDir, "source_data", "a.pdf"), []byte("%PDF"), 0o644)

	outcome, warning, err := s.Delete(ctx, scopeA, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != Deleted || warning != "" {
		t.Errorf("outcome = %v warning = %q, want full delete", outcome, warning)
	}
	if _, err := os.Stat(botDir); !os.IsNotExist(err) {
		t.Error("trained-data folder still exists")
	}
	if recs, _ := s.List(ctx, scopeA); len(recs) != 0 {
		t.Errorf("record still listed: %v", recs)
	}
}

func TestFileStoreDeleteAbsentFolderIsMetaOnly(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()

	// Record exists but nothing was ever trained on this machine.
	if err := s.Put(ctx, record(scopeA, "alpha", time.Now())); err != nil {
		t.Fatal(err)
	}

	outcome, warning, err := s.Delete(ctx, scopeA, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != DeleteMetaOnly {
		t.Errorf("outcome = %v, want DeleteMetaOnly", outcome)
	}
	if warning == "" {
		t.Error("missing-folder delete should carry a warning")
	}
	if recs, _ := s.List(ctx, scopeA); len(recs) != 0 {
		t.Errorf("record still listed: %v", recs)
	}
}

func TestFileStoreDeleteUnknownName(t *testing.T) {
	s := NewFileStore(t.TempDir())
	outcome, _, err := s.Delete(context.Background(), scopeA, "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if outcome != DeleteFailed {
		t.Errorf("outcome = %v, want DeleteFailed", outcome)
	}
}

func TestFileStoreCorruptCatalogResets(t *testing.T) {
	dataDir := t.TempDir()
	os.WriteFile(filepath.Join(dataDir, "chatbots.json"), []byte("{not json"), 0o644)

	s := NewFileStore(dataDir)
	recs, err := s.List(context.Background(), scopeA)
	if err != nil {
		t.Fatalf("corrupt catalog should read as empty, got %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("got %v, want empty", recs)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

// slowBackend blocks training until released, then writes the index.
type slowBackend struct {
	release chan struct{}
}

func (b *slowBackend) Train(ctx context.Context, _ *training.Job, _, indexDir string) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return os.WriteFile(filepath.Join(indexDir, "faiss.index"), []byte("idx"), 0o644)
}

// fastBackend trains instantly.
type fastBackend struct{}

func (fastBackend) Train(_ context.Context, _ *training.Job, _, indexDir string) error {
	return os.WriteFile(filepath.Join(indexDir, "faiss.index"), []byte("idx"), 0o644)
}

func newTestRegistry(t *testing.T, backend training.Backend) (*Registry, string) {
	t.Helper()
	dataDir := t.TempDir()
	reg := New(NewFileStore(dataDir))
	reg.SetTrainer(training.NewController(dataDir, backend, reg))
	reg.SetScope(scopeA)
	return reg, dataDir
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitJob(t *testing.T, job *training.Job) training.Status {
	t.Helper()
	ch, cancel := job.Subscribe()
	defer cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatal("job stream closed without terminal event")
			}
			if ev.Terminal {
				return ev.Status
			}
		case <-deadline:
			t.Fatal("job did not finish")
		}
	}
}

func TestCreateValidatesBeforeStartingWork(t *testing.T) {
	reg, _ := newTestRegistry(t, fastBackend{})
	ctx := context.Background()
	pdf := writePDF(t, "a.pdf")

	if _, err := reg.Create(ctx, "   ", []string{pdf}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name: err = %v, want ErrEmptyName", err)
	}
	if _, err := reg.Create(ctx, "bot", nil); err == nil {
		t.Error("no documents: want error")
	}
}

func TestCreateListsOnlyAfterSuccess(t *testing.T) {
	backend := &slowBackend{release: make(chan struct{})}
	reg, _ := newTestRegistry(t, backend)
	ctx := context.Background()

	job, err := reg.Create(ctx, "bot", []string{writePDF(t, "a.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	if recs, _ := reg.List(ctx); len(recs) != 0 {
		t.Errorf("chatbot listed before training finished: %v", recs)
	}

	close(backend.release)
	if got := waitJob(t, job); got != training.StatusSucceeded {
		t.Fatalf("status = %v (diag %q)", got, job.Diagnostic())
	}
	recs, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "bot" || !recs[0].IndexReady {
		t.Errorf("after success list = %v", recs)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	reg, _ := newTestRegistry(t, fastBackend{})
	ctx := context.Background()

	job, err := reg.Create(ctx, "bot", []string{writePDF(t, "a.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	waitJob(t, job)

	if _, err := reg.Create(ctx, "bot", []string{writePDF(t, "b.pdf")}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}
}

func TestRetrainGateAndTimestampBump(t *testing.T) {
	backend := &slowBackend{release: make(chan struct{})}
	dataDir := t.TempDir()
	reg := New(NewFileStore(dataDir))
	reg.SetTrainer(training.NewController(dataDir, fastBackend{}, reg))
	reg.SetScope(scopeA)
	ctx := context.Background()

	job, err := reg.Create(ctx, "bot", []string{writePDF(t, "a.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	waitJob(t, job)
	recs, _ := reg.List(ctx)
	created := recs[0].CreatedAt

	// Swap in a blocking trainer so the retrain stays in flight.
	reg.SetTrainer(training.NewController(dataDir, backend, reg))
	retrain, err := reg.Retrain(ctx, "bot")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Retrain(ctx, "bot"); !errors.Is(err, ErrJobInFlight) {
		t.Errorf("second retrain err = %v, want ErrJobInFlight", err)
	}
	if _, _, err := reg.Delete(ctx, "bot"); !errors.Is(err, ErrJobInFlight) {
		t.Errorf("delete during training err = %v, want ErrJobInFlight", err)
	}

	close(backend.release)
	if got := waitJob(t, retrain); got != training.StatusSucceeded {
		t.Fatalf("retrain status = %v (diag %q)", got, retrain.Diagnostic())
	}
	recs, _ = reg.List(ctx)
	if len(recs) != 1 {
		t.Fatalf("list = %v", recs)
	}
	if !recs[0].CreatedAt.Equal(created) {
		t.Error("retrain changed CreatedAt")
	}
	if !recs[0].LastTrainedAt.After(created) {
		t.Error("retrain did not bump LastTrainedAt")
	}
}

func TestRetrainUnknownName(t *testing.T) {
	reg, _ := newTestRegistry(t, fastBackend{})
	if _, err := reg.Retrain(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// flakyStore serves a canned list until broken, then fails every call.
type flakyStore struct {
	recs   []Record
	broken bool
}

func (f *flakyStore) List(context.Context, Scope) ([]Record, error) {
	if f.broken {
		return nil, fmt.Errorf("connection refused")
	}
	return append([]Record{}, f.recs...), nil
}
func (f *flakyStore) Put(_ context.Context, rec Record) error {
	f.recs = append(f.recs, rec)
	return nil
}
func (f *flakyStore) Delete(context.Context, Scope, string) (DeleteOutcome, string, error) {
	return DeleteMetaOnly, "trained data left behind", nil
}

func TestListSoftFailKeepsLastKnown(t *testing.T) {
	store := &flakyStore{recs: []Record{record(scopeA, "alpha", time.Now())}}
	reg := New(store)
	reg.SetScope(scopeA)
	ctx := context.Background()

	recs, err := reg.List(ctx)
	if err != nil || len(recs) != 1 {
		t.Fatalf("first list = %v, %v", recs, err)
	}

	store.broken = true
	recs, err = reg.List(ctx)
	if err == nil {
		t.Error("want error surfaced on fetch failure")
	}
	if len(recs) != 1 || recs[0].Name != "alpha" {
		t.Errorf("soft-fail list = %v, want last known", recs)
	}
}

func TestDeleteMetaOnlyWarningSurfaced(t *testing.T) {
	store := &flakyStore{recs: []Record{record(scopeA, "alpha", time.Now())}}
	reg := New(store)
	reg.SetScope(scopeA)

	outcome, warning, err := reg.Delete(context.Background(), "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if outcome != DeleteMetaOnly || warning == "" {
		t.Errorf("outcome = %v warning = %q, want meta-only with warning", outcome, warning)
	}
}

func TestSetScopeDiscardsCache(t *testing.T) {
	store := &flakyStore{recs: []Record{record(scopeA, "alpha", time.Now())}}
	reg := New(store)
	reg.SetScope(scopeA)
	ctx := context.Background()

	if _, err := reg.List(ctx); err != nil {
		t.Fatal(err)
	}

	store.broken = true
	reg.SetScope(scopeB)
	recs, err := reg.List(ctx)
	if err == nil {
		t.Error("want fetch error in new scope")
	}
	if len(recs) != 0 {
		t.Errorf("stale records leaked across scopes: %v", recs)
	}
}
