// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry owns the chatbot catalog: the per-scope list of trained
// chatbots, their metadata, and the lifecycle operations (create, retrain,
// delete) that go through the training controller.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/docent-tui/internal/training"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyName is returned when a chatbot name is blank.
	ErrEmptyName = errors.New("chatbot name is empty")
	// ErrNameTaken is returned when a chatbot with the name already exists
	// in the scope.
	ErrNameTaken = errors.New("chatbot name already exists")
	// ErrNotFound is returned when no chatbot with the name exists in the
	// scope.
	ErrNotFound = errors.New("chatbot not found")
	// ErrJobInFlight is returned when a training job for the chatbot is
	// already running.
	ErrJobInFlight = errors.New("training already in progress for this chatbot")
)

// =============================================================================
// RECORDS
// =============================================================================

// Scope is the (company, team, part) triple a chatbot belongs to.
type Scope struct {
	Company string
	Team    string
	Part    string
}

func (s Scope) String() string {
	return s.Company + "/" + s.Team + "/" + s.Part
}

// Record is one chatbot's registry metadata.
type Record struct {
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	Team          string    `json:"team"`
	Part          string    `json:"part"`
	IndexPath     string    `json:"indexPath"`
	CreatedAt     time.Time `json:"createdAt"`
	LastTrainedAt time.Time `json:"lastTrainedAt"`
	PDFURL        string    `json:"pdfURL,omitempty"`
	// IndexReady reports whether the trained index file exists. Derived,
	// never persisted as authority; re-checked from disk or server.
	IndexReady bool `json:"-"`
}

// Scope returns the record's owning scope.
func (r Record) Scope() Scope {
	return Scope{Company: r.Company, Team: r.Team, Part: r.Part}
}

// =============================================================================
// STORE
// =============================================================================

// DeleteOutcome reports how far a delete got.
type DeleteOutcome int

const (
	// DeleteFailed means nothing was removed.
	DeleteFailed DeleteOutcome = iota
	// DeleteMetaOnly means the metadata entry is gone but trained data
	// could not be removed; the caller should surface the warning.
	DeleteMetaOnly
	// Deleted means both metadata and trained data are gone.
	Deleted
)

// Store persists chatbot metadata. Implementations: FileStore (local
// chatbots.json plus on-disk trained-data folders) and RemoteStore (HTTP
// backend that owns the catalog server-side).
type Store interface {
	// List returns the records in a scope, oldest first.
	List(ctx context.Context, scope Scope) ([]Record, error)
	// Put inserts or replaces the record for (scope, name).
	Put(ctx context.Context, rec Record) error
	// Delete removes a chatbot's metadata and trained data. A partial
	// result (metadata removed, data left behind) is reported as
	// DeleteMetaOnly with a warning string, not as an error.
	Delete(ctx context.Context, scope Scope, name string) (DeleteOutcome, string, error)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the client-side catalog for the currently selected scope.
// It caches one scope's list at a time; switching scope discards the cache
// and refetches, so stale entries from a previous selection never leak
// into the new one.
type Registry struct {
	store   Store
	trainer *training.Controller

	mu       sync.Mutex
	scope    Scope
	cache    []Record
	fetched  bool
	inflight map[string]*training.Job // name -> running job, current scope
}

// New creates a registry over a metadata store. Wire the training
// controller afterwards with SetTrainer (the controller's registrar is the
// registry itself, so construction is two-step).
func New(store Store) *Registry {
	return &Registry{
		store:    store,
		inflight: make(map[string]*training.Job),
	}
}

// SetTrainer attaches the training controller used by Create and Retrain.
func (r *Registry) SetTrainer(t *training.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trainer = t
}

// SetScope switches the active scope, discarding the cached list. Jobs
// started under the previous scope keep running; only the gate map resets
// so names in the new scope are judged on their own.
func (r *Registry) SetScope(scope Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope == r.scope {
		return
	}
	r.scope = scope
	r.cache = nil
	r.fetched = false
	r.inflight = make(map[string]*training.Job)
}

// Scope returns the active scope.
func (r *Registry) Scope() Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scope
}

// List returns the chatbots in the active scope. On a fetch failure the
// last known list is returned along with the error so the UI can keep
// rendering (soft-fail); the caller decides whether to surface the error.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	r.mu.Lock()
	scope := r.scope
	r.mu.Unlock()

	recs, err := r.store.List(ctx, scope)
	if err != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		return append([]Record{}, r.cache...), err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })

	r.mu.Lock()
	defer r.mu.Unlock()
	if scope == r.scope {
		r.cache = recs
		r.fetched = true
	}
	return append([]Record{}, recs...), nil
}

// Get returns one cached record by name.
func (r *Registry) Get(ctx context.Context, name string) (Record, error) {
	recs, err := r.List(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, rec := range recs {
		if rec.Name == name {
			return rec, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Create validates the name, then starts a training job for a new chatbot.
// Validation failures happen before any file or network I/O. The chatbot
// appears in the list only after the job succeeds.
func (r *Registry) Create(ctx context.Context, name string, pdfs []string) (*training.Job, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(pdfs) == 0 {
		return nil, errors.New("no documents selected")
	}

	recs, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing chatbots: %w", err)
	}
	for _, rec := range recs {
		if rec.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrNameTaken, name)
		}
	}

	return r.startJob(ctx, name, pdfs)
}

// Retrain re-runs training for an existing chatbot using its staged
// documents. The existing record stays listed while the job runs; on
// success its LastTrainedAt is bumped.
func (r *Registry) Retrain(ctx context.Context, name string) (*training.Job, error) {
	rec, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	// The original inputs are still staged in source_data; the controller
	// re-runs the backend over them without copying anything.
	return r.startJob(ctx, rec.Name, nil)
}

// startJob enforces the one-job-per-name gate and launches the run.
func (r *Registry) startJob(ctx context.Context, name string, pdfs []string) (*training.Job, error) {
	r.mu.Lock()
	if r.trainer == nil {
		r.mu.Unlock()
		return nil, errors.New("no training controller configured")
	}
	if job, ok := r.inflight[name]; ok && !job.Status().Terminal() {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrJobInFlight, name)
	}
	scope := r.scope
	trainer := r.trainer
	r.mu.Unlock()

	job := trainer.Start(ctx, training.Request{
		Company: scope.Company,
		Team:    scope.Team,
		Part:    scope.Part,
		Name:    name,
		PDFs:    pdfs,
	})

	r.mu.Lock()
	r.inflight[name] = job
	r.mu.Unlock()
	return job, nil
}

// Job returns the in-flight (or most recent) job for a name, if any.
func (r *Registry) Job(name string) (*training.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.inflight[name]
	return job, ok
}

// RegisterTrained is the training.Registrar hook: it records a chatbot
// after its index has been built. A create inserts a fresh record; a
// retrain keeps CreatedAt and bumps LastTrainedAt.
func (r *Registry) RegisterTrained(ctx context.Context, company, team, part, name, indexPath string, at time.Time) error {
	scope := Scope{Company: company, Team: team, Part: part}
	rec := Record{
		Name:          name,
		Company:       company,
		Team:          team,
		Part:          part,
		IndexPath:     indexPath,
		CreatedAt:     at,
		LastTrainedAt: at,
		IndexReady:    true,
	}
	existing, err := r.store.List(ctx, scope)
	if err == nil {
		for _, old := range existing {
			if old.Name == name {
				rec.CreatedAt = old.CreatedAt
				rec.PDFURL = old.PDFURL
				break
			}
		}
	}
	if err := r.store.Put(ctx, rec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if scope == r.scope && r.fetched {
		replaced := false
		for i := range r.cache {
			if r.cache[i].Name == name {
				r.cache[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			r.cache = append(r.cache, rec)
		}
	}
	return nil
}

// Delete removes a chatbot. A running job blocks the delete. The outcome
// distinguishes full removal from metadata-only removal; the warning text
// accompanies the latter.
func (r *Registry) Delete(ctx context.Context, name string) (DeleteOutcome, string, error) {
	r.mu.Lock()
	if job, ok := r.inflight[name]; ok && !job.Status().Terminal() {
		r.mu.Unlock()
		return DeleteFailed, "", fmt.Errorf("%w: %s", ErrJobInFlight, name)
	}
	scope := r.scope
	r.mu.Unlock()

	outcome, warning, err := r.store.Delete(ctx, scope, name)
	if err != nil {
		return DeleteFailed, "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if scope == r.scope {
		kept := r.cache[:0]
		for _, rec := range r.cache {
			if rec.Name != name {
				kept = append(kept, rec)
			}
		}
		r.cache = kept
		delete(r.inflight, name)
	}
	return outcome, warning, nil
}

// MarkIndexReady updates the cached readiness flag for a chatbot, fed by
// the index watcher.
func (r *Registry) MarkIndexReady(company, team, part, name string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if (Scope{Company: company, Team: team, Part: part}) != r.scope {
		return
	}
	for i := range r.cache {
		if r.cache[i].Name == name {
			r.cache[i].IndexReady = ready
			return
		}
	}
}

