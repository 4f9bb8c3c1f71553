// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for docent.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdTree
	CmdList
	CmdTrain
	CmdRetrain
	CmdDelete
	CmdAsk
	CmdQuiz
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool // Output in JSON format
	Backend string // Override backend base URL

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `docent - terminal client for document-trained chatbots

Docent is a terminal client for a training-chatbot service. Pick your
place in the organization (company, team, part), train chatbots on PDF
documents, and ask them questions grounded in those documents.

Usage:
  docent                       Start TUI (default)
  docent login                 Sign in and pick company/team/part
  docent logout                Clear saved identity
  docent status                Show backend and identity status
  docent tree [add ...]        Browse or extend the organization tree
  docent list                  List chatbots in the current scope
  docent train NAME --pdf F    Train a new chatbot from PDF documents
  docent retrain NAME          Re-train an existing chatbot
  docent delete NAME           Delete a chatbot
  docent ask NAME "question"   Ask a chatbot a question
  docent quiz NAME             Take a quiz generated from the documents
  docent export NAME           Export the saved chat transcript
  docent config [show|set|path] Configuration
  docent version               Show version

Login Commands:
  docent login                       Interactive login (reuses saved identity)
  docent login --company C --team T --part P --employee ID
                                     Non-interactive login
  docent logout                      Clear company/team/part selection

Tree Commands:
  docent tree                        Show companies, teams and parts
  docent tree add company NAME       Register a new company
  docent tree add team NAME          Register a team under your company
  docent tree add part NAME          Register a part under your team

Training Commands:
  docent train NAME --pdf a.pdf [--pdf b.pdf ...]
                                     Train a new chatbot; streams the
                                     training log until it finishes
  docent retrain NAME                Re-run training on the staged documents
  docent delete NAME [--confirm]     Delete chatbot and its trained data

Chat and Quiz Commands:
  docent ask NAME "question"         One-shot question with sources
  docent quiz NAME                   Interactive multiple-choice quiz
    --regenerate                     Discard cached questions first
  docent export NAME                 Write the saved transcript to a file
    --format md|json                 Output format (default: md)
    --out DIR                        Output directory (default: .)

Config Commands:
  docent config show                 Show current configuration
  docent config set KEY VALUE        Update one setting (e.g. backend.base_url)
  docent config path                 Print the config file path

Global Flags:
  --backend URL   Override the backend base URL for this run
  --json          Output in JSON format
  -q, --quiet     Minimal output
  -v, --verbose   Debug output

Examples:
  docent login --company acme --team support --part returns --employee E-104
  docent train returns-bot --pdf handbook.pdf --pdf faq.pdf
  docent ask returns-bot "What is the return window for sale items?"
  docent list --json
  docent delete returns-bot --confirm

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("docent version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "login":
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "tree", "org":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdTree, parsedArgs

	case "list", "ls", "l":
		return CmdList, parsedArgs

	case "train", "create":
		return CmdTrain, parsedArgs

	case "retrain":
		return CmdRetrain, parsedArgs

	case "delete", "rm":
		return CmdDelete, parsedArgs

	case "ask":
		return CmdAsk, parsedArgs

	case "quiz", "qna":
		return CmdQuiz, parsedArgs

	case "export":
		return CmdExport, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: show help rather than guessing.
		parsedArgs.Subcommand = cmd
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--backend":
			if i+1 < len(args) {
				i++
				parsedArgs.Backend = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--backend=") {
				parsedArgs.Backend = strings.TrimPrefix(arg, "--backend=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		resp := NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		})
		resp.Print()
		return
	}
	PrintVersion()
}

// VersionData is the JSON payload for the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleHelp handles the "help" command.
func HandleHelp(args Args) {
	if args.Subcommand != "" {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Subcommand)
	}
	PrintUsage()
}
