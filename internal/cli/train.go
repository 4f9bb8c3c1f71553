// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// train.go - train, retrain and delete commands.
//
// Train starts a job on the registry and streams its log until the job
// reaches a terminal state, so the command's exit code reflects the
// training outcome. Retrain re-runs training on the already staged
// documents. Delete removes the chatbot and its trained data after
// confirmation.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/docent-tui/internal/registry"
	"github.com/jeranaias/docent-tui/internal/training"
)

// HandleTrain handles the "train" command.
func HandleTrain(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	if _, err := app.RequireScope(); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	name := parser.Positional(0)
	if name == "" {
		return NewValidationError("chatbot name", "", "usage: docent train NAME --pdf FILE [--pdf FILE ...]")
	}

	pdfs := parser.FlagList("pdf")
	if len(pdfs) == 0 {
		return NewValidationError("documents", "", "at least one --pdf FILE is required")
	}
	for _, pdf := range pdfs {
		if _, err := os.Stat(pdf); err != nil {
			return NewValidationError("document", pdf, "file does not exist or is not readable")
		}
	}

	job, err := app.Registry.Create(context.Background(), name, pdfs)
	if err != nil {
		if errors.Is(err, registry.ErrNameTaken) {
			return NewExitError(
				fmt.Sprintf("chatbot %q already exists; use 'docent retrain %s' to train it again", name, name),
				ExitUsageError)
		}
		return err
	}

	return streamJob(job, args)
}

// HandleRetrain handles the "retrain" command.
func HandleRetrain(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	if _, err := app.RequireScope(); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	name := parser.Positional(0)
	if name == "" {
		return NewValidationError("chatbot name", "", "usage: docent retrain NAME")
	}

	job, err := app.Registry.Retrain(context.Background(), name)
	if err != nil {
		return err
	}

	return streamJob(job, args)
}

// streamJob subscribes to a training job and relays its log to the
// terminal until the terminal event arrives. The subscription guarantees
// every line in order followed by exactly one terminal event, so the
// loop needs no timeout of its own.
func streamJob(job *training.Job, args Args) error {
	events, cancel := job.Subscribe()
	defer cancel()

	var final training.Status
	for ev := range events {
		if ev.Terminal {
			final = ev.Status
			break
		}
		if ev.Line == nil || args.JSON {
			continue
		}
		printLogLine(*ev.Line, args)
	}

	if final == training.StatusSucceeded {
		if args.JSON {
			return NewJSONResponse("train", map[string]string{
				"chatbot": job.Name,
				"status":  string(final),
			}).Print()
		}
		if !args.Quiet {
			fmt.Printf("%s %s trained\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(job.Name))
		}
		return nil
	}

	msg := fmt.Sprintf("training %q failed", job.Name)
	if diag := job.Diagnostic(); diag != "" {
		msg = fmt.Sprintf("training %q failed: %s", job.Name, diag)
	}
	return NewExitError(msg, ExitTrainingError)
}

// printLogLine renders one training log line. Stderr output and
// controller commentary get distinct styling; trainer stdout is plain.
func printLogLine(line training.LogLine, args Args) {
	switch line.Kind {
	case training.LineInfo:
		fmt.Println(InfoStyle.Render(line.Text))
	case training.LineErrorOutput:
		fmt.Fprintln(os.Stderr, DimStyle.Render(line.Text))
	default:
		if !args.Quiet {
			fmt.Println(line.Text)
		}
	}
}

// HandleDelete handles the "delete" command.
func HandleDelete(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	if _, err := app.RequireScope(); err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	name := parser.Positional(0)
	if name == "" {
		return NewValidationError("chatbot name", "", "usage: docent delete NAME [--confirm]")
	}

	ctx := context.Background()

	// Look the record up first so the confirmation prompt can show what
	// is about to go away. A missing record fails here with not-found.
	rec, err := app.Registry.Get(ctx, name)
	if err != nil {
		return err
	}

	confirmed, err := RequireConfirmationWithDetails(
		parser.BoolFlag("confirm"),
		fmt.Sprintf("delete chatbot %q and its trained data", name),
		map[string]string{
			"Chatbot": rec.Name,
			"Scope":   fmt.Sprintf("%s / %s / %s", rec.Company, rec.Team, rec.Part),
		},
		args.JSON,
	)
	if err != nil {
		return err
	}
	if !confirmed {
		ShowCancellationMessage()
		return nil
	}

	outcome, warning, err := app.Registry.Delete(ctx, name)
	if err != nil {
		return err
	}

	if args.JSON {
		payload := map[string]any{"chatbot": name, "deleted": true}
		if outcome == registry.DeleteMetaOnly {
			payload["warning"] = warning
		}
		return NewJSONResponse("delete", payload).Print()
	}

	if !args.Quiet {
		fmt.Printf("%s deleted %s\n", SuccessStyle.Render("[OK]"), HighlightStyle.Render(name))
	}
	if outcome == registry.DeleteMetaOnly && warning != "" {
		fmt.Println(WarningStyle.Render("warning: " + warning))
	}
	return nil
}
