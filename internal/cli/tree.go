// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tree.go - organization tree command.
//
// "docent tree" prints the cached company/team/part hierarchy;
// "docent tree add LEVEL NAME" registers a new node. Adds go to the
// backend directory first and only land in the local cache when the
// backend accepts them.

package cli

import (
	"context"
	"fmt"
)

// HandleTree handles the "tree" command and its "add" subcommand.
func HandleTree(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	if parser.Subcommand() == "add" {
		return treeAdd(context.Background(), app, args, parser)
	}

	if args.JSON {
		return NewJSONResponse("tree", app.Tree.Snapshot()).Print()
	}

	printTree(app)
	return nil
}

// printTree renders the hierarchy with the current selection highlighted.
func printTree(app *App) {
	sel := app.Selection.Current()
	companies := app.Tree.Companies()
	if len(companies) == 0 {
		fmt.Println(DimStyle.Render("no companies registered yet; use 'docent tree add company NAME'"))
		return
	}

	fmt.Println(TitleStyle.Render("Organization"))
	for _, company := range companies {
		fmt.Println(treeLabel(company, company == sel.Company))
		for _, team := range app.Tree.Teams(company) {
			onTeam := company == sel.Company && team == sel.Team
			fmt.Println("  " + treeLabel(team, onTeam))
			for _, part := range app.Tree.Parts(company, team) {
				onPart := onTeam && part == sel.Part
				fmt.Println("    " + treeLabel(part, onPart))
			}
		}
	}
}

func treeLabel(name string, selected bool) string {
	if selected {
		return HighlightStyle.Render(name + " *")
	}
	return ValueStyle.Render(name)
}

// treeAdd registers a new node at the given level. Team and part adds
// hang off the current selection, so they need a login first.
func treeAdd(ctx context.Context, app *App, args Args, parser *ArgParser) error {
	level := parser.Positional(1)
	name := parser.Positional(2)
	if level == "" || name == "" {
		return NewValidationError("tree add", "", "usage: docent tree add {company|team|part|employee} NAME")
	}

	sel := app.Selection.Current()

	switch level {
	case "company":
		if err := app.Tree.AddCompany(ctx, name); err != nil {
			return err
		}
	case "team":
		if sel.Company == "" {
			return NewExitError("select a company before adding a team: run 'docent login'", ExitLoginError)
		}
		if err := app.Tree.AddTeam(ctx, sel.Company, name); err != nil {
			return err
		}
	case "part":
		if sel.Company == "" || sel.Team == "" {
			return NewExitError("select a company and team before adding a part: run 'docent login'", ExitLoginError)
		}
		if err := app.Tree.AddPart(ctx, sel.Company, sel.Team, name); err != nil {
			return err
		}
	case "employee":
		if sel.Company == "" || sel.Team == "" || sel.Part == "" {
			return NewExitError("select a company, team and part before adding an employee: run 'docent login'", ExitLoginError)
		}
		if err := app.Tree.AddEmployee(ctx, sel.Company, sel.Team, sel.Part, name); err != nil {
			return err
		}
	default:
		return NewValidationError("tree add", level, "level must be company, team, part or employee")
	}

	if args.JSON {
		return NewJSONResponse("tree add", map[string]string{"level": level, "name": name}).Print()
	}
	if !args.Quiet {
		fmt.Printf("%s added %s %q\n", SuccessStyle.Render("[OK]"), level, name)
	}
	return nil
}
