// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// configcmd.go - configuration management command.
//
// "docent config show|set|path". Set validates the whole config before
// saving, so a bad value never lands on disk.

package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/docent-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "set":
		return configSet(args)
	case "path":
		return configPath(args)
	default:
		return NewValidationError("config subcommand", args.Subcommand, "must be show, set or path")
	}
}

func configShow(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return NewExitError(fmt.Sprintf("invalid configuration: %v", err), ExitConfigError)
	}

	if args.JSON {
		return NewJSONResponse("config", cfg).Print()
	}

	fmt.Println(TitleStyle.Render("docent configuration"))

	fmt.Println(SectionStyle.Render("Backend"))
	fmt.Printf("  %s%s\n", RenderLabel("base_url:"), ValueStyle.Render(cfg.Backend.BaseURL))
	fmt.Printf("  %s%s\n", RenderLabel("timeout_secs:"), ValueStyle.Render(strconv.Itoa(cfg.Backend.TimeoutSecs)))
	fmt.Printf("  %s%s\n", RenderLabel("upload_timeout_secs:"), ValueStyle.Render(strconv.Itoa(cfg.Backend.UploadTimeoutSecs)))

	fmt.Println(SectionStyle.Render("Training"))
	fmt.Printf("  %s%s\n", RenderLabel("mode:"), ValueStyle.Render(cfg.Training.Mode))
	if cfg.Training.Mode == config.TrainingModeProcess {
		fmt.Printf("  %s%s\n", RenderLabel("trainer_path:"), ValueStyle.Render(cfg.Training.TrainerPath))
		fmt.Printf("  %s%s\n", RenderLabel("interpreter:"), ValueStyle.Render(cfg.Training.Interpreter))
	}

	fmt.Println(SectionStyle.Render("Storage"))
	dataDir, _ := cfg.DataDir()
	fmt.Printf("  %s%s\n", RenderLabel("data_dir:"), ValueStyle.Render(dataDir))
	fmt.Printf("  %s%s\n", RenderLabel("chat_history:"), ValueStyle.Render(strconv.FormatBool(cfg.Storage.ChatHistory)))

	fmt.Println(SectionStyle.Render("UI"))
	fmt.Printf("  %s%s\n", RenderLabel("theme:"), ValueStyle.Render(cfg.UI.Theme))
	fmt.Printf("  %s%s\n", RenderLabel("render_markdown:"), ValueStyle.Render(strconv.FormatBool(cfg.UI.RenderMarkdown)))
	fmt.Printf("  %s%s\n", RenderLabel("show_sources:"), ValueStyle.Render(strconv.FormatBool(cfg.UI.ShowSources)))
	return nil
}

func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return NewValidationError("config set", "", "usage: docent config set KEY VALUE")
	}

	cfg, err := config.Load()
	if err != nil {
		return NewExitError(fmt.Sprintf("invalid configuration: %v", err), ExitConfigError)
	}

	if err := applyConfigValue(cfg, args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return NewValidationError(args.ConfigKey, args.ConfigVal, err.Error())
	}
	if err := cfg.Save(); err != nil {
		return NewExitError(fmt.Sprintf("cannot save configuration: %v", err), ExitConfigError)
	}

	if args.JSON {
		return NewJSONResponse("config set", map[string]string{
			"key":   args.ConfigKey,
			"value": args.ConfigVal,
		}).Print()
	}
	if !args.Quiet {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
	}
	return nil
}

// applyConfigValue sets one dotted key on the config.
func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "backend.base_url":
		cfg.Backend.BaseURL = value
	case "backend.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return NewValidationError(key, value, "must be a positive integer")
		}
		cfg.Backend.TimeoutSecs = n
	case "backend.upload_timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return NewValidationError(key, value, "must be a positive integer")
		}
		cfg.Backend.UploadTimeoutSecs = n
	case "training.mode":
		cfg.Training.Mode = value
	case "training.trainer_path":
		cfg.Training.TrainerPath = value
	case "training.interpreter":
		cfg.Training.Interpreter = value
	case "storage.data_dir":
		cfg.Storage.DataDir = value
	case "storage.chat_history":
		b, err := ParseBoolString(value)
		if err != nil {
			return NewValidationError(key, value, "must be true or false")
		}
		cfg.Storage.ChatHistory = b
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.render_markdown":
		b, err := ParseBoolString(value)
		if err != nil {
			return NewValidationError(key, value, "must be true or false")
		}
		cfg.UI.RenderMarkdown = b
	case "ui.show_sources":
		b, err := ParseBoolString(value)
		if err != nil {
			return NewValidationError(key, value, "must be true or false")
		}
		cfg.UI.ShowSources = b
	default:
		return NewValidationError("config key", key, "unknown setting")
	}
	return nil
}

func configPath(args Args) error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return NewExitError(fmt.Sprintf("cannot resolve config path: %v", err), ExitConfigError)
	}

	if args.JSON {
		return NewJSONResponse("config path", map[string]string{"path": path}).Print()
	}
	fmt.Println(path)
	return nil
}
