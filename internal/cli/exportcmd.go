// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// exportcmd.go - Handler for the "export" command.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/docent-tui/internal/export"
)

// ExportData is the JSON payload for a transcript export.
type ExportData struct {
	Chatbot string `json:"chatbot"`
	Format  string `json:"format"`
	Path    string `json:"path"`
	Turns   int    `json:"turns"`
}

// HandleExport handles the "export" command: write the saved chat
// transcript of one chatbot to a file.
func HandleExport(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	scope, err := app.RequireScope()
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	name := parser.Positional(0)
	if name == "" {
		return NewValidationError("name", "", "usage: docent export NAME [--format md|json] [--out DIR]")
	}
	format := parser.FlagOrDefault("format", "md")
	outDir := parser.FlagOrDefault("out", ".")

	exporter, err := export.ForFormat(format, export.DefaultOptions())
	if err != nil {
		return NewValidationError("format", format, err.Error())
	}

	ctx := context.Background()
	if _, err := app.Registry.Get(ctx, name); err != nil {
		return err
	}

	store, err := app.OpenHistory()
	if err != nil {
		return NewCommandError("export", "open history", "chat history unavailable", err)
	}
	if store == nil {
		return NewExitError("chat history is disabled (storage.chat_history = false)", ExitConfigError)
	}
	defer store.Close()

	turns, err := store.Load(ctx, scope.Company, scope.Team, scope.Part, name)
	if err != nil {
		return NewCommandError("export", "load transcript", "could not read saved conversation", err)
	}
	if len(turns) == 0 {
		return NewExitError(fmt.Sprintf("no saved conversation for %q", name), ExitNotFoundError)
	}

	transcript := &export.Transcript{
		Company:  scope.Company,
		Team:     scope.Team,
		Part:     scope.Part,
		Chatbot:  name,
		Exported: time.Now(),
		Turns:    turns,
	}

	path, err := export.WriteFile(transcript, exporter, outDir)
	if err != nil {
		return NewCommandError("export", "write file", "could not write transcript", err)
	}

	if args.JSON {
		return NewJSONResponse("export", ExportData{
			Chatbot: name,
			Format:  format,
			Path:    path,
			Turns:   len(turns),
		}).Print()
	}

	fmt.Printf("%s exported %d turns to %s\n",
		SuccessStyle.Render("[OK]"), len(turns), HighlightStyle.Render(path))
	return nil
}
