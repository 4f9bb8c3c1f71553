// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package selection tracks the user's current organizational selection:
// the (company, team, part, employee) tuple that scopes every chatbot
// operation. Changing a higher level cascades a reset of everything below
// it, and each transition is persisted write-through.
package selection

import (
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

// StateError reports an invalid selection transition.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	return ok && t.Message == e.Message
}

// Precondition sentinels: a level may only be set when the level above it
// is already set.
var (
	ErrNoCompany = &StateError{Message: "select a company before a team"}
	ErrNoTeam    = &StateError{Message: "select a team before a part"}
	ErrNoPart    = &StateError{Message: "select a part before an employee"}
)

// =============================================================================
// SELECTION
// =============================================================================

// Selection is the current 4-tuple. Empty string means unset. The cascade
// invariant holds at every observable point: a non-empty lower field implies
// non-empty fields above it.
type Selection struct {
	Company    string `json:"company"`
	Team       string `json:"team"`
	Part       string `json:"part"`
	EmployeeID string `json:"employee_id"`
}

// Complete reports whether all four slots are set.
func (s Selection) Complete() bool {
	return s.Company != "" && s.Team != "" && s.Part != "" && s.EmployeeID != ""
}

// Scope returns the (company, team, part) triple that partitions chatbots.
func (s Selection) Scope() (company, team, part string) {
	return s.Company, s.Team, s.Part
}

// Saver persists a selection after each transition. The identity store
// satisfies this through a small adapter in the app wiring.
type Saver interface {
	SaveSelection(sel Selection) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(sel Selection) error

func (f SaverFunc) SaveSelection(sel Selection) error {
	return f(sel)
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// Machine serializes selection transitions. All user-driven changes go
// through one Machine instance; the mutex is the single-writer guarantee.
type Machine struct {
	mu    sync.Mutex
	cur   Selection
	saver Saver

	// onLogout clears session-scoped caches (the chatbot list).
	onLogout func()
}

// NewMachine creates a selection state machine seeded from the persisted
// record and persisting through saver. A nil saver disables persistence.
func NewMachine(initial Selection, saver Saver) *Machine {
	return &Machine{cur: normalize(initial), saver: saver}
}

// normalize enforces the cascade invariant on a restored selection; a
// record hand-edited on disk must not be able to violate it.
func normalize(s Selection) Selection {
	if s.Company == "" {
		return Selection{}
	}
	if s.Team == "" {
		return Selection{Company: s.Company}
	}
	if s.Part == "" {
		return Selection{Company: s.Company, Team: s.Team}
	}
	return s
}

// SetLogoutHook registers a function called when Logout clears the
// selection, used to drop the session-scoped chatbot list.
func (m *Machine) SetLogoutHook(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = fn
}

// Current returns the current selection.
func (m *Machine) Current() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// SelectCompany sets the company and resets team, part and employee.
func (m *Machine) SelectCompany(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cur = Selection{Company: name}
	return m.persist()
}

// SelectTeam sets the team and resets part and employee. The company must
// already be set.
func (m *Machine) SelectTeam(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Company == "" {
		return ErrNoCompany
	}
	m.cur = Selection{Company: m.cur.Company, Team: name}
	return m.persist()
}

// SelectPart sets the part and resets the employee. The team must already
// be set.
func (m *Machine) SelectPart(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Team == "" {
		return ErrNoTeam
	}
	m.cur = Selection{Company: m.cur.Company, Team: m.cur.Team, Part: name}
	return m.persist()
}

// SelectEmployee sets the employee ID. The part must already be set.
func (m *Machine) SelectEmployee(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cur.Part == "" {
		return ErrNoPart
	}
	m.cur.EmployeeID = id
	return m.persist()
}

// Logout clears all four slots and any session-scoped caches, then
// persists the cleared selection. The tree itself is retained by the
// identity store.
func (m *Machine) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cur = Selection{}
	if m.onLogout != nil {
		m.onLogout()
	}
	return m.persist()
}

// persist writes through the saver. Caller holds the lock, so saves are
// serialized: no interleaved writes of partial state.
func (m *Machine) persist() error {
	if m.saver == nil {
		return nil
	}
	return m.saver.SaveSelection(m.cur)
}
