// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list.go - chatbot list command.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/docent-tui/internal/registry"
)

// HandleList handles the "list" command. Listing soft-fails: when the
// catalog store errors, the last known records are still shown with a
// warning rather than an empty screen.
func HandleList(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}
	scope, err := app.RequireScope()
	if err != nil {
		return err
	}

	recs, listErr := app.Registry.List(context.Background())

	if args.JSON {
		if listErr != nil && len(recs) == 0 {
			return listErr
		}
		data := make([]ChatbotData, 0, len(recs))
		for _, rec := range recs {
			data = append(data, chatbotData(rec))
		}
		return NewJSONResponse("list", data).Print()
	}

	if listErr != nil {
		fmt.Println(WarningStyle.Render(fmt.Sprintf("warning: chatbot list may be stale: %v", listErr)))
	}

	if len(recs) == 0 {
		fmt.Printf("no chatbots for %s / %s / %s\n", scope.Company, scope.Team, scope.Part)
		fmt.Println(DimStyle.Render("train one with 'docent train NAME --pdf FILE'"))
		return nil
	}

	fmt.Println(TitleStyle.Render(fmt.Sprintf("Chatbots - %s / %s / %s", scope.Company, scope.Team, scope.Part)))
	for _, rec := range recs {
		status := "ready"
		if !rec.IndexReady {
			status = "pending"
		}
		fmt.Printf("  %s %s %s\n",
			RenderStatus(status),
			HighlightStyle.Render(rec.Name),
			DimStyle.Render("trained "+rec.LastTrainedAt.Format(time.RFC822)))
	}
	return nil
}

// chatbotData converts a registry record to the list JSON payload.
func chatbotData(rec registry.Record) ChatbotData {
	return ChatbotData{
		Name:          rec.Name,
		Company:       rec.Company,
		Team:          rec.Team,
		Part:          rec.Part,
		CreatedAt:     rec.CreatedAt.UTC().Format(time.RFC3339),
		LastTrainedAt: rec.LastTrainedAt.UTC().Format(time.RFC3339),
		IndexReady:    rec.IndexReady,
	}
}
