// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orgtree maintains the organizational hierarchy used to scope
// chatbots: company → team → part → employee. The remote directory service
// is the source of truth; the in-memory cache is a read-optimized projection
// that doubles as an offline fallback.
package orgtree

import "encoding/json"

// =============================================================================
// TREE TYPES
// =============================================================================

// Tree is the full organizational hierarchy, ordered by insertion.
// Sibling names are unique at every level.
type Tree []Company

// Company is a top-level organization node.
type Company struct {
	Name  string `json:"name"`
	Teams []Team `json:"teams"`
}

// Team is a second-level node under a company.
type Team struct {
	Name  string `json:"name"`
	Parts []Part `json:"parts"`
}

// Part is a third-level node under a team. Employees are opaque
// identifier strings, unique within the part.
type Part struct {
	Name      string   `json:"name"`
	Employees []string `json:"employees"`
}

// =============================================================================
// TREE LOOKUPS
// =============================================================================

// Company returns the company with the given name, or nil.
func (t Tree) Company(name string) *Company {
	for i := range t {
		if t[i].Name == name {
			return &t[i]
		}
	}
	return nil
}

// Team returns the named team under the company, or nil.
func (c *Company) Team(name string) *Team {
	if c == nil {
		return nil
	}
	for i := range c.Teams {
		if c.Teams[i].Name == name {
			return &c.Teams[i]
		}
	}
	return nil
}

// Part returns the named part under the team, or nil.
func (tm *Team) Part(name string) *Part {
	if tm == nil {
		return nil
	}
	for i := range tm.Parts {
		if tm.Parts[i].Name == name {
			return &tm.Parts[i]
		}
	}
	return nil
}

// HasEmployee reports whether id is registered in the part.
func (p *Part) HasEmployee(id string) bool {
	if p == nil {
		return false
	}
	for _, e := range p.Employees {
		if e == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tree. Readers get snapshots so a
// concurrent add can never produce a torn view.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	// The tree is plain data; a JSON round trip is the simplest deep copy
	// and the tree is small (hundreds of nodes at most).
	data, err := json.Marshal(t)
	if err != nil {
		return nil
	}
	var out Tree
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
