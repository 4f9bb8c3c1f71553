// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - login and logout commands.
//
// Login settles the caller's place in the organization: company, team,
// part, then employee ID. Each level is validated against the backend
// directory before it is persisted, and selecting a level resets
// everything below it. Non-interactive mode takes all four as flags;
// interactive mode walks the cached tree with numbered prompts.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/docent-tui/internal/registry"
)

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}

	parser := NewArgParser(args.Raw)
	company := parser.Flag("company")
	team := parser.Flag("team")
	part := parser.Flag("part")
	employee := parser.Flag("employee")

	ctx := context.Background()

	if company == "" && team == "" && part == "" && employee == "" {
		if args.JSON {
			return NewValidationError("login", "", "JSON mode requires --company, --team, --part and --employee")
		}
		return loginInteractive(ctx, app, args)
	}

	if company == "" || team == "" || part == "" || employee == "" {
		return NewValidationError("login", "",
			"non-interactive login needs all of --company, --team, --part and --employee")
	}

	matches, err := app.Client.SearchLogin(ctx, company, team, part, employee)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return NewExitError(
			fmt.Sprintf("no directory entry for %s/%s/%s employee %s", company, team, part, employee),
			ExitNotFoundError)
	}

	if err := applyLogin(app, company, team, part, employee); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("login", StatusIdentityInfo{
			Company:    company,
			Team:       team,
			Part:       part,
			EmployeeID: employee,
			LoggedIn:   true,
		}).Print()
	}
	if !args.Quiet {
		fmt.Printf("%s logged in as %s at %s / %s / %s\n",
			SuccessStyle.Render("[OK]"), HighlightStyle.Render(employee), company, team, part)
	}
	return nil
}

// loginInteractive walks the four selection levels with numbered prompts.
// The tree cache seeds the choices; anything typed at the "other" prompt
// is looked up in the directory before it is accepted.
func loginInteractive(ctx context.Context, app *App, args Args) error {
	if !IsTTY() {
		return fmt.Errorf("interactive login needs a terminal; use --company/--team/--part/--employee flags")
	}

	company, err := pickLevel("Select your company:", app.Tree.Companies())
	if err != nil {
		return err
	}
	team, err := pickLevel("Select your team:", app.Tree.Teams(company))
	if err != nil {
		return err
	}
	part, err := pickLevel("Select your part:", app.Tree.Parts(company, team))
	if err != nil {
		return err
	}
	employee, err := pickLevel("Select your employee ID:", app.Tree.Employees(company, team, part))
	if err != nil {
		return err
	}

	matches, err := app.Client.SearchLogin(ctx, company, team, part, employee)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return NewExitError(
			fmt.Sprintf("no directory entry for %s/%s/%s employee %s", company, team, part, employee),
			ExitNotFoundError)
	}

	if err := applyLogin(app, company, team, part, employee); err != nil {
		return err
	}

	if !args.Quiet {
		fmt.Println()
		fmt.Printf("%s logged in as %s at %s / %s / %s\n",
			SuccessStyle.Render("[OK]"), HighlightStyle.Render(employee), company, team, part)
	}
	return nil
}

// pickLevel prompts for one selection level. Known options come from the
// cached tree; an empty list or the last "(type a name)" entry falls back
// to free-form input.
func pickLevel(question string, options []string) (string, error) {
	if len(options) == 0 {
		fmt.Printf("%s ", question)
		var name string
		if _, err := fmt.Scanln(&name); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return name, nil
	}

	withOther := append(append([]string(nil), options...), "(type a name)")
	choice := PromptChoice(question, withOther)
	if choice < 0 {
		return "", fmt.Errorf("cancelled")
	}
	if choice < len(options) {
		return options[choice], nil
	}

	fmt.Print("Name: ")
	var name string
	if _, err := fmt.Scanln(&name); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return name, nil
}

// applyLogin drives the selection machine through the four levels. The
// machine persists each transition, so a failure partway leaves a valid
// prefix selected.
func applyLogin(app *App, company, team, part, employee string) error {
	if err := app.Selection.SelectCompany(company); err != nil {
		return err
	}
	if err := app.Selection.SelectTeam(team); err != nil {
		return err
	}
	if err := app.Selection.SelectPart(part); err != nil {
		return err
	}
	if err := app.Selection.SelectEmployee(employee); err != nil {
		return err
	}

	app.Registry.SetScope(registry.Scope{Company: company, Team: team, Part: part})
	return nil
}

// HandleLogout handles the "logout" command.
func HandleLogout(args Args) error {
	app, err := NewApp(&args)
	if err != nil {
		return err
	}

	if err := app.Selection.Logout(); err != nil {
		return err
	}

	if args.JSON {
		return NewJSONResponse("logout", StatusIdentityInfo{LoggedIn: false}).Print()
	}
	if !args.Quiet {
		fmt.Printf("%s logged out\n", SuccessStyle.Render("[OK]"))
	}
	return nil
}
