// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"testing"

	"github.com/jeranaias/docent-tui/internal/orgtree"
	"github.com/jeranaias/docent-tui/internal/selection"
	"github.com/jeranaias/docent-tui/internal/training"
)

// okDirectory accepts every remote add.
type okDirectory struct{}

func (okDirectory) AddCompany(context.Context, string) error { return nil }

func (okDirectory) AddTeam(context.Context, string, string) error { return nil }

func (okDirectory) AddPart(context.Context, string, string, string) error { return nil }

func (okDirectory) AddEmployee(context.Context, string, string, string, string) error { return nil }

// TestFirstChatbotScenario walks the first-run path end to end: build the
// org tree from nothing, select into it, and train the first chatbot.
func TestFirstChatbotScenario(t *testing.T) {
	ctx := context.Background()
	tree := orgtree.NewCache(nil, okDirectory{})
	machine := selection.NewMachine(selection.Selection{},
		selection.SaverFunc(func(selection.Selection) error { return nil }))
	reg, _ := newTestRegistry(t, fastBackend{})

	// Grow the tree one level at a time.
	if err := tree.AddCompany(ctx, "Acme"); err != nil {
		t.Fatal(err)
	}
	if err := tree.AddTeam(ctx, "Acme", "Eng"); err != nil {
		t.Fatal(err)
	}
	if err := tree.AddPart(ctx, "Acme", "Eng", "Backend"); err != nil {
		t.Fatal(err)
	}

	// Walk the selection down the freshly added path.
	for _, step := range []func() error{
		func() error { return machine.SelectCompany("Acme") },
		func() error { return machine.SelectTeam("Eng") },
		func() error { return machine.SelectPart("Backend") },
	} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	company, team, part := machine.Current().Scope()
	reg.SetScope(Scope{Company: company, Team: team, Part: part})

	// A brand-new scope has no chatbots.
	if recs, err := reg.List(ctx); err != nil || len(recs) != 0 {
		t.Fatalf("fresh scope: recs = %v, err = %v", recs, err)
	}

	job, err := reg.Create(ctx, "Helper", []string{writePDF(t, "handbook.pdf")})
	if err != nil {
		t.Fatal(err)
	}
	if got := waitJob(t, job); got != training.StatusSucceeded {
		t.Fatalf("status = %v (diag %q)", got, job.Diagnostic())
	}

	recs, err := reg.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "Helper" {
		t.Fatalf("recs = %v, want just Helper", recs)
	}
	if !recs[0].LastTrainedAt.Equal(recs[0].CreatedAt) {
		t.Errorf("first training: LastTrainedAt %v != CreatedAt %v",
			recs[0].LastTrainedAt, recs[0].CreatedAt)
	}
	if recs[0].Company != "Acme" || recs[0].Team != "Eng" || recs[0].Part != "Backend" {
		t.Errorf("record scope = %s/%s/%s", recs[0].Company, recs[0].Team, recs[0].Part)
	}
}
