// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Shared construction of the config, API client, token store,
// and offline cache used by the command handlers.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/januscore/janus-cli/internal/api"
	"github.com/januscore/janus-cli/internal/auth"
	"github.com/januscore/janus-cli/internal/config"
	"github.com/januscore/janus-cli/internal/storage"
)

// activeConfig returns a copy of the global config with CLI flag overrides
// applied. A copy so flag overrides never leak into a later config save.
func activeConfig(args Args) *config.Config {
	cfg := config.Global().Clone()
	if args.Server != "" {
		cfg.Server.URL = args.Server
	}
	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}
	if args.Verbose {
		api.SetVerbose(true)
	}
	return cfg
}

// newClient creates an unauthenticated API client for the configured backend.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.Server.URL)
}

// authedClient creates an API client carrying the stored session token.
// Returns api.ErrNotAuthenticated if no token is stored.
func authedClient(cfg *config.Config) (*api.Client, error) {
	store, err := auth.NewStore()
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}

	token, err := store.LoadToken()
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			return nil, api.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	return newClient(cfg).WithToken(token), nil
}

// openCache opens the offline listing cache when enabled. A cache failure is
// reported but never fatal: commands degrade to backend-only operation.
func openCache(cfg *config.Config, quiet bool) *storage.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	path, err := cfg.CachePath()
	if err != nil {
		return nil
	}

	cache, err := storage.Open(path)
	if err != nil {
		if !quiet {
			fmt.Fprintf(os.Stderr, "%s offline cache unavailable: %v\n",
				warningStyle.Render("[Warning]"), err)
		}
		return nil
	}
	return cache
}
