// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orgtree

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeDirectory records remote adds and can be told to fail.
type fakeDirectory struct {
	failWith error
	calls    []string
}

func (d *fakeDirectory) AddCompany(ctx context.Context, company string) error {
	d.calls = append(d.calls, "company:"+company)
	return d.failWith
}

func (d *fakeDirectory) AddTeam(ctx context.Context, company, team string) error {
	d.calls = append(d.calls, "team:"+company+"/"+team)
	return d.failWith
}

func (d *fakeDirectory) AddPart(ctx context.Context, company, team, part string) error {
	d.calls = append(d.calls, "part:"+company+"/"+team+"/"+part)
	return d.failWith
}

func (d *fakeDirectory) AddEmployee(ctx context.Context, company, team, part, id string) error {
	d.calls = append(d.calls, "employee:"+company+"/"+team+"/"+part+"/"+id)
	return d.failWith
}

func seedTree() Tree {
	return Tree{
		{Name: "Acme", Teams: []Team{
			{Name: "Eng", Parts: []Part{
				{Name: "Backend", Employees: []string{"E100"}},
			}},
		}},
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestCache_Lists(t *testing.T) {
	c := NewCache(seedTree(), &fakeDirectory{})

	if got := c.Companies(); !reflect.DeepEqual(got, []string{"Acme"}) {
		t.Errorf("Companies = %v", got)
	}
	if got := c.Teams("Acme"); !reflect.DeepEqual(got, []string{"Eng"}) {
		t.Errorf("Teams = %v", got)
	}
	if got := c.Parts("Acme", "Eng"); !reflect.DeepEqual(got, []string{"Backend"}) {
		t.Errorf("Parts = %v", got)
	}
	if got := c.Employees("Acme", "Eng", "Backend"); !reflect.DeepEqual(got, []string{"E100"}) {
		t.Errorf("Employees = %v", got)
	}
}

func TestCache_ListsUnknownAreEmptyNotError(t *testing.T) {
	c := NewCache(seedTree(), &fakeDirectory{})

	if got := c.Teams("Nope"); len(got) != 0 {
		t.Errorf("Teams(unknown) = %v, want empty", got)
	}
	if got := c.Parts("Acme", "Nope"); len(got) != 0 {
		t.Errorf("Parts(unknown) = %v, want empty", got)
	}
	if got := c.Employees("Acme", "Eng", "Nope"); len(got) != 0 {
		t.Errorf("Employees(unknown) = %v, want empty", got)
	}
}

func TestCache_InsertionOrderPreserved(t *testing.T) {
	dir := &fakeDirectory{}
	c := NewCache(nil, dir)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if err := c.AddCompany(ctx, name); err != nil {
			t.Fatalf("AddCompany(%s) failed: %v", name, err)
		}
	}

	want := []string{"Zeta", "Alpha", "Mid"}
	if got := c.Companies(); !reflect.DeepEqual(got, want) {
		t.Errorf("Companies = %v, want %v (insertion order)", got, want)
	}
}

// =============================================================================
// ADD TESTS
// =============================================================================

func TestCache_AddChain(t *testing.T) {
	dir := &fakeDirectory{}
	c := NewCache(nil, dir)
	ctx := context.Background()

	if err := c.AddCompany(ctx, "Acme"); err != nil {
		t.Fatalf("AddCompany failed: %v", err)
	}
	if err := c.AddTeam(ctx, "Acme", "Eng"); err != nil {
		t.Fatalf("AddTeam failed: %v", err)
	}
	if err := c.AddPart(ctx, "Acme", "Eng", "Backend"); err != nil {
		t.Fatalf("AddPart failed: %v", err)
	}
	if err := c.AddEmployee(ctx, "Acme", "Eng", "Backend", "E100"); err != nil {
		t.Fatalf("AddEmployee failed: %v", err)
	}

	if len(dir.calls) != 4 {
		t.Errorf("remote calls = %d, want 4", len(dir.calls))
	}
	if got := c.Employees("Acme", "Eng", "Backend"); !reflect.DeepEqual(got, []string{"E100"}) {
		t.Errorf("Employees = %v", got)
	}
}

func TestCache_AddDuplicateRejected(t *testing.T) {
	c := NewCache(seedTree(), &fakeDirectory{})
	ctx := context.Background()

	if err := c.AddCompany(ctx, "Acme"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate company: got %v, want ErrDuplicateName", err)
	}
	if err := c.AddTeam(ctx, "Acme", "Eng"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate team: got %v, want ErrDuplicateName", err)
	}
	if err := c.AddEmployee(ctx, "Acme", "Eng", "Backend", "E100"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate employee: got %v, want ErrDuplicateName", err)
	}
}

func TestCache_AddMissingParent(t *testing.T) {
	c := NewCache(nil, &fakeDirectory{})
	ctx := context.Background()

	if err := c.AddTeam(ctx, "Ghost", "Eng"); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("AddTeam(missing company): got %v, want ErrParentNotFound", err)
	}
	if err := c.AddPart(ctx, "Ghost", "Eng", "Backend"); !errors.Is(err, ErrParentNotFound) {
		t.Errorf("AddPart(missing ancestors): got %v, want ErrParentNotFound", err)
	}
}

func TestCache_RemoteFailureDoesNotMutateLocal(t *testing.T) {
	dir := &fakeDirectory{failWith: errors.New("service unreachable")}
	c := NewCache(seedTree(), dir)
	ctx := context.Background()

	err := c.AddCompany(ctx, "NewCo")
	if err == nil {
		t.Fatal("expected error from remote failure")
	}

	var te *TreeError
	if !errors.As(err, &te) || te.Type != ErrTypeRemote {
		t.Errorf("error = %v, want TreeError with ErrTypeRemote", err)
	}

	// Local cache must be untouched.
	if got := c.Companies(); !reflect.DeepEqual(got, []string{"Acme"}) {
		t.Errorf("Companies after failed add = %v, want [Acme]", got)
	}
}

func TestCache_ChangeHookFiresWithSnapshot(t *testing.T) {
	c := NewCache(nil, &fakeDirectory{})

	var seen []Tree
	c.SetChangeHook(func(tr Tree) { seen = append(seen, tr) })

	if err := c.AddCompany(context.Background(), "Acme"); err != nil {
		t.Fatalf("AddCompany failed: %v", err)
	}

	if len(seen) != 1 {
		t.Fatalf("hook fired %d times, want 1", len(seen))
	}
	if seen[0].Company("Acme") == nil {
		t.Error("hook snapshot missing added company")
	}

	// Snapshot must be independent of later cache mutations.
	if err := c.AddTeam(context.Background(), "Acme", "Eng"); err != nil {
		t.Fatalf("AddTeam failed: %v", err)
	}
	if len(seen[0].Company("Acme").Teams) != 0 {
		t.Error("earlier snapshot mutated by later add (torn read)")
	}
}

func TestCache_EmptyNameRejectedBeforeRemote(t *testing.T) {
	dir := &fakeDirectory{}
	c := NewCache(nil, dir)

	if err := c.AddCompany(context.Background(), ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("got %v, want ErrEmptyName", err)
	}
	if len(dir.calls) != 0 {
		t.Errorf("remote called %d times for invalid input, want 0", len(dir.calls))
	}
}
