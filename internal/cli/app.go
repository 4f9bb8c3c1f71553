// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared wiring for docent CLI commands.
//
// Every subcommand needs the same core pieces: loaded configuration, a
// backend client, the persisted identity record, the selection machine,
// and the chatbot registry. NewApp builds them once so individual
// command handlers stay small.

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jeranaias/docent-tui/internal/api"
	"github.com/jeranaias/docent-tui/internal/config"
	"github.com/jeranaias/docent-tui/internal/history"
	"github.com/jeranaias/docent-tui/internal/identity"
	"github.com/jeranaias/docent-tui/internal/orgtree"
	"github.com/jeranaias/docent-tui/internal/registry"
	"github.com/jeranaias/docent-tui/internal/selection"
	"github.com/jeranaias/docent-tui/internal/training"
)

// =============================================================================
// APP - SHARED COMMAND WIRING
// =============================================================================

// App bundles the long-lived pieces a command handler works with.
type App struct {
	Config    *config.Config
	Client    *api.Client
	DataDir   string
	Identity  *identity.Store
	Record    identity.Record
	Selection *selection.Machine
	Tree      *orgtree.Cache
	Registry  *registry.Registry
	Trainer   *training.Controller
}

// NewApp loads configuration and wires the client, identity store,
// selection machine, org tree cache, registry, and trainer together.
// Global flags (--backend) override the loaded configuration.
func NewApp(args *Args) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, NewExitError(fmt.Sprintf("invalid configuration: %v", err), ExitConfigError)
	}

	if args != nil && args.Backend != "" {
		cfg.Backend.BaseURL = args.Backend
		if err := cfg.Validate(); err != nil {
			return nil, NewExitError(fmt.Sprintf("invalid --backend URL: %v", err), ExitUsageError)
		}
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, NewExitError(fmt.Sprintf("cannot resolve data directory: %v", err), ExitConfigError)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Timeout(),
		UploadTimeout:     cfg.UploadTimeout(),
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
	})

	idStore := identity.NewStore(dataDir)
	rec, err := idStore.Load()
	if err != nil {
		return nil, NewExitError(fmt.Sprintf("cannot load identity: %v", err), ExitGeneralError)
	}

	app := &App{
		Config:   cfg,
		Client:   client,
		DataDir:  dataDir,
		Identity: idStore,
		Record:   rec,
	}

	// The selection machine writes every transition back through the
	// identity store so a crash never loses the login state.
	initial := selection.Selection{
		Company:    rec.Company,
		Team:       rec.Team,
		Part:       rec.Part,
		EmployeeID: rec.EmployeeID,
	}
	app.Selection = selection.NewMachine(initial, selection.SaverFunc(app.saveSelection))

	// Tree cache is seeded from the identity record and mirrored back
	// on every successful mutation. The backend is authoritative for adds.
	app.Tree = orgtree.NewCache(rec.Tree, client)
	app.Tree.SetChangeHook(app.saveTree)

	// Registry and trainer form a loop: the trainer reports finished
	// indexes back to the registry, and the registry starts jobs on the
	// trainer. Built in two steps for that reason.
	app.Registry = registry.New(app.newStore())
	app.Trainer = training.NewController(dataDir, app.newBackend(), app.Registry)
	app.Registry.SetTrainer(app.Trainer)

	company, team, part := app.Selection.Current().Scope()
	app.Registry.SetScope(registry.Scope{Company: company, Team: team, Part: part})

	// Logging out must also drop the session-scoped chatbot list, no
	// matter which surface triggered it.
	app.Selection.SetLogoutHook(func() {
		app.Registry.SetScope(registry.Scope{})
	})

	return app, nil
}

// newStore picks the chatbot catalog store for the configured training
// mode: process mode owns local folders, upload mode mirrors the server.
func (a *App) newStore() registry.Store {
	if a.Config.Training.Mode == config.TrainingModeProcess {
		return registry.NewFileStore(a.DataDir)
	}
	return registry.NewRemoteStore(a.Client)
}

// newBackend picks the training backend for the configured mode.
func (a *App) newBackend() training.Backend {
	if a.Config.Training.Mode == config.TrainingModeProcess {
		return &training.ProcessBackend{
			TrainerPath: a.Config.Training.TrainerPath,
			Interpreter: a.Config.Training.Interpreter,
		}
	}
	return &training.UploadBackend{Client: a.Client}
}

// OpenHistory opens the transcript database if chat history is enabled.
// Returns nil with no error when history is off; callers treat a nil
// store as "don't persist".
func (a *App) OpenHistory() (*history.Store, error) {
	if !a.Config.Storage.ChatHistory {
		return nil, nil
	}
	return history.Open(filepath.Join(a.DataDir, "history.db"))
}

// Scope returns the current chatbot scope. ok is false until a company,
// team, and part have all been selected.
func (a *App) Scope() (api.Scope, bool) {
	company, team, part := a.Selection.Current().Scope()
	if company == "" || team == "" || part == "" {
		return api.Scope{}, false
	}
	return api.Scope{Company: company, Team: team, Part: part}, true
}

// RequireScope is Scope for commands that cannot run logged out.
func (a *App) RequireScope() (api.Scope, error) {
	scope, ok := a.Scope()
	if !ok {
		return api.Scope{}, NewExitError("not logged in: run 'docent login' first", ExitLoginError)
	}
	return scope, nil
}

// saveSelection is the selection machine's write-through hook.
func (a *App) saveSelection(sel selection.Selection) error {
	a.Record.Company = sel.Company
	a.Record.Team = sel.Team
	a.Record.Part = sel.Part
	a.Record.EmployeeID = sel.EmployeeID
	return a.Identity.Save(a.Record)
}

// saveTree mirrors tree mutations into the identity record.
func (a *App) saveTree(t orgtree.Tree) {
	a.Record.Tree = t
	// Best effort: a failed identity write loses only the local mirror,
	// the backend already committed the add.
	_ = a.Identity.Save(a.Record)
}
