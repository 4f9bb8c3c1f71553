// docent - a terminal client for document-trained chatbots.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/docent-tui/internal/cli"
	"github.com/jeranaias/docent-tui/internal/training"
	"github.com/jeranaias/docent-tui/internal/ui"
)

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		if err := runTUI(&args); err != nil {
			cli.HandleErrorAndExit(err, args.JSON)
		}

	case cli.CmdLogin:
		exit(cli.HandleLogin(args), args)
	case cli.CmdLogout:
		exit(cli.HandleLogout(args), args)
	case cli.CmdStatus:
		exit(cli.HandleStatus(args), args)
	case cli.CmdTree:
		exit(cli.HandleTree(args), args)
	case cli.CmdList:
		exit(cli.HandleList(args), args)
	case cli.CmdTrain:
		exit(cli.HandleTrain(args), args)
	case cli.CmdRetrain:
		exit(cli.HandleRetrain(args), args)
	case cli.CmdDelete:
		exit(cli.HandleDelete(args), args)
	case cli.CmdAsk:
		exit(cli.HandleAsk(args), args)
	case cli.CmdQuiz:
		exit(cli.HandleQuiz(args), args)
	case cli.CmdExport:
		exit(cli.HandleExport(args), args)
	case cli.CmdConfig:
		exit(cli.HandleConfig(args), args)

	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp(args)
	}
}

func exit(err error, args cli.Args) {
	if err != nil {
		cli.HandleErrorAndExit(err, args.JSON)
	}
}

// runTUI wires the application and hands it to Bubble Tea.
func runTUI(args *cli.Args) error {
	app, err := cli.NewApp(args)
	if err != nil {
		return err
	}

	store, err := app.OpenHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: chat history unavailable: %v\n", err)
	}
	if store != nil {
		defer store.Close()
	}

	// Index files are written by the trainer process, so readiness
	// changes arrive from outside; the watcher keeps the list fresh.
	watcher, err := training.NewIndexWatcher(
		filepath.Join(app.DataDir, "chatbots"),
		app.Config.WatchDebounce(),
		app.Registry.MarkIndexReady,
	)
	if err == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	program := tea.NewProgram(
		ui.New(ui.Deps{
			Config:    app.Config,
			Client:    app.Client,
			Selection: app.Selection,
			Tree:      app.Tree,
			Registry:  app.Registry,
			History:   store,
		}),
		tea.WithAltScreen(),
	)

	_, err = program.Run()
	return err
}
