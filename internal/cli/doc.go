// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for docent.
//
// This package implements the non-interactive surface of the docent
// client: login and identity management, chatbot listing and training,
// one-shot questions, quiz sessions, and configuration management. The
// interactive TUI lives in internal/ui; this package handles everything
// reachable from subcommands.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - App: Shared wiring of config, backend client, identity, and registry
//
// # Usage
//
// Parse and execute commands:
//
//	args := cli.Parse(os.Args[1:])
//	switch args.Cmd {
//	case cli.CmdAsk:
//	    return cli.HandleAsk(args)
//	case cli.CmdList:
//	    return cli.HandleList(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - login/logout: Select and persist the caller's place in the org tree
//   - tree: Inspect and extend the organizational tree
//   - list: Show chatbots for the current selection
//   - train/retrain/delete: Manage chatbots and their document indexes
//   - ask: Single question against a trained chatbot
//   - quiz: Generate and answer quiz questions
//   - status: Backend reachability and identity display
//   - config: Configuration management
//
// All commands support --json flag for scripting.
package cli
