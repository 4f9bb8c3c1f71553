// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - backend and identity status command.

package cli

import (
	"context"
	"fmt"
	"time"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	backend := StatusBackendInfo{BaseURL: app.Client.BaseURL(), Reachable: true}
	if err := app.Client.Ping(ctx); err != nil {
		backend.Reachable = false
		backend.Error = err.Error()
	}

	sel := app.Selection.Current()
	ident := StatusIdentityInfo{
		Company:    sel.Company,
		Team:       sel.Team,
		Part:       sel.Part,
		EmployeeID: sel.EmployeeID,
		LoggedIn:   sel.Complete(),
	}

	if args.JSON {
		return NewJSONResponse("status", StatusData{Backend: backend, Identity: ident}).Print()
	}

	fmt.Println(TitleStyle.Render("docent status"))

	fmt.Println(SectionStyle.Render("Backend"))
	fmt.Printf("  %s%s\n", RenderLabel("URL:"), ValueStyle.Render(backend.BaseURL))
	if backend.Reachable {
		fmt.Printf("  %s%s\n", RenderLabel("Reachable:"), RenderStatus("ok"))
	} else {
		fmt.Printf("  %s%s %s\n", RenderLabel("Reachable:"), RenderStatus("fail"),
			DimStyle.Render(backend.Error))
	}

	fmt.Println(SectionStyle.Render("Identity"))
	if !ident.LoggedIn {
		fmt.Printf("  %s\n", DimStyle.Render("not logged in; run 'docent login'"))
		return nil
	}
	fmt.Printf("  %s%s\n", RenderLabel("Company:"), ValueStyle.Render(ident.Company))
	fmt.Printf("  %s%s\n", RenderLabel("Team:"), ValueStyle.Render(ident.Team))
	fmt.Printf("  %s%s\n", RenderLabel("Part:"), ValueStyle.Render(ident.Part))
	fmt.Printf("  %s%s\n", RenderLabel("Employee:"), HighlightStyle.Render(ident.EmployeeID))
	return nil
}
