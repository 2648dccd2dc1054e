// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers for janus.
//
// Handles "janus config" and its subcommands.
//
// Command: config
// Short:   Show or modify configuration
// Aliases: (none)
//
// Examples:
//   janus config                        Show all settings
//   janus config path                   Show config file path
//   janus config get server.url         Get one setting
//   janus config set ui.theme light     Set one setting
package cli

import (
	"fmt"

	"github.com/januscore/janus-cli/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		return showConfig()
	case "path":
		return showConfigPath()
	case "get":
		return getConfigValue(args)
	case "set":
		return setConfigValue(args)
	default:
		return NewValidationError("subcommand", args.Subcommand,
			"must be one of: show, path, get, set")
	}
}

// showConfig prints every known setting with its effective value.
func showConfig() error {
	cfg := config.Global()

	fmt.Println()
	fmt.Println(summaryHeaderStyle.Render("Configuration"))
	fmt.Println()

	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("  %s = %v\n", commandStyle.Render(key), value)
	}

	fmt.Println()
	if path, err := config.ConfigPath(); err == nil {
		fmt.Println(infoStyle.Render("File: " + path))
	}
	fmt.Println()
	return nil
}

// showConfigPath prints the config file location.
func showConfigPath() error {
	path, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// getConfigValue prints a single setting.
func getConfigValue(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("KEY", "janus config get server.url")
	}

	value, err := config.Global().Get(args.ConfigKey)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", value)
	return nil
}

// setConfigValue updates a single setting and persists the config file.
func setConfigValue(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("KEY VALUE", "janus config set ui.theme light")
	}

	cfg := config.Global()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("%s %s = %s\n", commandStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
	return nil
}
