// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - one-shot question command.
//
// "docent ask NAME question..." sends a single question to a trained
// chatbot, prints the grounded answer (rendered as markdown on a TTY)
// and the source pages it cites. When chat history is enabled the
// exchange lands in the same transcript the TUI chat view uses.

package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/docent-tui/internal/chat"
)

// markdownRenderer is the glamour renderer for answer output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
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
	question := JoinPositionalArgs(parser, 1)
	if name == "" || question == "" {
		return NewValidationError("question", "", `usage: docent ask NAME "your question"`)
	}

	ctx := context.Background()

	if _, err := app.Registry.Get(ctx, name); err != nil {
		return err
	}

	store, err := app.OpenHistory()
	if err != nil {
		// A broken history database should not block asking.
		fmt.Println(WarningStyle.Render(fmt.Sprintf("warning: chat history unavailable: %v", err)))
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	session, err := chat.NewSession(ctx, app.Client, store, scope, name)
	if err != nil {
		return err
	}

	msg, err := session.Ask(ctx, question)
	if err != nil {
		return err
	}

	sources := chat.FormatSources(msg.Sources)

	if args.JSON {
		var sourceList []string
		for _, src := range msg.Sources {
			sourceList = append(sourceList, fmt.Sprintf("%s p.%d", src.File, src.Page))
		}
		return NewJSONResponse("ask", AnswerData{
			Chatbot:  name,
			Question: question,
			Answer:   msg.Content,
			Sources:  sourceList,
		}).Print()
	}

	if app.Config.UI.RenderMarkdown && IsStdoutTTY() {
		fmt.Print(renderMarkdown(msg.Content))
	} else {
		fmt.Println(msg.Content)
	}

	if app.Config.UI.ShowSources && sources != "" {
		fmt.Println(DimStyle.Render("sources: " + sources))
	}
	return nil
}
