// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orgtree

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

// TreeError represents an organization tree mutation error.
type TreeError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *TreeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TreeError) Unwrap() error {
	return e.Cause
}

func (e *TreeError) Is(target error) bool {
	t, ok := target.(*TreeError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || t.Message == e.Message)
}

// ErrorType categorizes tree errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeDuplicateName
	ErrTypeParentNotFound
	ErrTypeEmptyName
	ErrTypeRemote
)

// Sentinel errors for easy checking.
var (
	ErrDuplicateName  = &TreeError{Type: ErrTypeDuplicateName, Message: "name already exists among siblings"}
	ErrParentNotFound = &TreeError{Type: ErrTypeParentNotFound, Message: "parent node not found"}
	ErrEmptyName      = &TreeError{Type: ErrTypeEmptyName, Message: "name must not be empty"}
)

// =============================================================================
// DIRECTORY SERVICE
// =============================================================================

// Directory is the remote directory service the tree is mirrored to.
// The service is authoritative: an add that the service rejects must not
// appear in the local cache.
type Directory interface {
	AddCompany(ctx context.Context, company string) error
	AddTeam(ctx context.Context, company, team string) error
	AddPart(ctx context.Context, company, team, part string) error
	AddEmployee(ctx context.Context, company, team, part, employeeID string) error
}

// =============================================================================
// TREE CACHE
// =============================================================================

// Cache is the in-memory organization tree. It is the sole writer of the
// tree; all mutations pass through its Add methods, which commit remotely
// before touching local state.
type Cache struct {
	mu   sync.RWMutex
	tree Tree
	dir  Directory

	// onChange, when set, is invoked with a snapshot after every successful
	// mutation so the identity store can mirror the tree to disk.
	onChange func(Tree)
}

// NewCache creates a tree cache seeded with an existing tree snapshot
// (typically from the identity store) and backed by the given directory
// service.
func NewCache(seed Tree, dir Directory) *Cache {
	return &Cache{tree: seed.Clone(), dir: dir}
}

// SetChangeHook registers a function called with a tree snapshot after each
// successful add. Used for write-through persistence.
func (c *Cache) SetChangeHook(fn func(Tree)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Snapshot returns a deep copy of the current tree.
func (c *Cache) Snapshot() Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Clone()
}

// Replace swaps in a freshly fetched tree, e.g. after a directory sync.
func (c *Cache) Replace(t Tree) {
	c.mu.Lock()
	c.tree = t.Clone()
	hook := c.onChange
	snap := c.tree.Clone()
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// Companies returns all company names in insertion order.
func (c *Cache) Companies() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.tree))
	for _, co := range c.tree {
		out = append(out, co.Name)
	}
	return out
}

// Teams returns the team names under a company. An unknown company yields
// an empty slice, not an error.
func (c *Cache) Teams(company string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	co := c.tree.Company(company)
	if co == nil {
		return []string{}
	}
	out := make([]string, 0, len(co.Teams))
	for _, tm := range co.Teams {
		out = append(out, tm.Name)
	}
	return out
}

// Parts returns the part names under a company/team. Unknown ancestors
// yield an empty slice.
func (c *Cache) Parts(company, team string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tm := c.tree.Company(company).Team(team)
	if tm == nil {
		return []string{}
	}
	out := make([]string, 0, len(tm.Parts))
	for _, p := range tm.Parts {
		out = append(out, p.Name)
	}
	return out
}

// Employees returns the employee IDs under a company/team/part. Unknown
// ancestors yield an empty slice.
func (c *Cache) Employees(company, team, part string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.tree.Company(company).Team(team).Part(part)
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.Employees...)
}

// =============================================================================
// ADD OPERATIONS
// =============================================================================

// Duplicate policy: adds are REJECTED with ErrDuplicateName when the name is
// already present among siblings. Rejecting (rather than ignoring) keeps the
// local cache and the remote service from drifting silently.

// AddCompany registers a new company remotely, then appends it locally.
func (c *Cache) AddCompany(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyName
	}

	c.mu.RLock()
	exists := c.tree.Company(name) != nil
	c.mu.RUnlock()
	if exists {
		return ErrDuplicateName
	}

	if err := c.dir.AddCompany(ctx, name); err != nil {
		return &TreeError{Type: ErrTypeRemote, Message: fmt.Sprintf("directory rejected company %q", name), Cause: err}
	}

	c.mu.Lock()
	// Re-check under the write lock; a concurrent add may have won.
	if c.tree.Company(name) != nil {
		c.mu.Unlock()
		return ErrDuplicateName
	}
	c.tree = append(c.tree, Company{Name: name})
	hook, snap := c.onChange, c.tree.Clone()
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}

// AddTeam registers a new team under an existing company.
func (c *Cache) AddTeam(ctx context.Context, company, name string) error {
	if name == "" {
		return ErrEmptyName
	}

	c.mu.RLock()
	co := c.tree.Company(company)
	missing := co == nil
	exists := co.Team(name) != nil
	c.mu.RUnlock()
	if missing {
		return ErrParentNotFound
	}
	if exists {
		return ErrDuplicateName
	}

	if err := c.dir.AddTeam(ctx, company, name); err != nil {
		return &TreeError{Type: ErrTypeRemote, Message: fmt.Sprintf("directory rejected team %q", name), Cause: err}
	}

	c.mu.Lock()
	co = c.tree.Company(company)
	if co == nil {
		c.mu.Unlock()
		return ErrParentNotFound
	}
	if co.Team(name) != nil {
		c.mu.Unlock()
		return ErrDuplicateName
	}
	co.Teams = append(co.Teams, Team{Name: name})
	hook, snap := c.onChange, c.tree.Clone()
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}

// AddPart registers a new part under an existing company/team.
func (c *Cache) AddPart(ctx context.Context, company, team, name string) error {
	if name == "" {
		return ErrEmptyName
	}

	c.mu.RLock()
	tm := c.tree.Company(company).Team(team)
	missing := tm == nil
	exists := tm.Part(name) != nil
	c.mu.RUnlock()
	if missing {
		return ErrParentNotFound
	}
	if exists {
		return ErrDuplicateName
	}

	if err := c.dir.AddPart(ctx, company, team, name); err != nil {
		return &TreeError{Type: ErrTypeRemote, Message: fmt.Sprintf("directory rejected part %q", name), Cause: err}
	}

	c.mu.Lock()
	tm = c.tree.Company(company).Team(team)
	if tm == nil {
		c.mu.Unlock()
		return ErrParentNotFound
	}
	if tm.Part(name) != nil {
		c.mu.Unlock()
		return ErrDuplicateName
	}
	tm.Parts = append(tm.Parts, Part{Name: name})
	hook, snap := c.onChange, c.tree.Clone()
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}

// AddEmployee registers a new employee ID under an existing part.
func (c *Cache) AddEmployee(ctx context.Context, company, team, part, id string) error {
	if id == "" {
		return ErrEmptyName
	}

	c.mu.RLock()
	p := c.tree.Company(company).Team(team).Part(part)
	missing := p == nil
	exists := p.HasEmployee(id)
	c.mu.RUnlock()
	if missing {
		return ErrParentNotFound
	}
	if exists {
		return ErrDuplicateName
	}

	if err := c.dir.AddEmployee(ctx, company, team, part, id); err != nil {
		return &TreeError{Type: ErrTypeRemote, Message: fmt.Sprintf("directory rejected employee %q", id), Cause: err}
	}

	c.mu.Lock()
	p = c.tree.Company(company).Team(team).Part(part)
	if p == nil {
		c.mu.Unlock()
		return ErrParentNotFound
	}
	if p.HasEmployee(id) {
		c.mu.Unlock()
		return ErrDuplicateName
	}
	p.Employees = append(p.Employees, id)
	hook, snap := c.onChange, c.tree.Clone()
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
	return nil
}
