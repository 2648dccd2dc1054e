// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompts.go - Prompt template command handlers for janus.
//
// Handles "janus prompts" and its subcommands.
//
// Command: prompts
// Short:   List and manage prompt templates
// Aliases: prompt
//
// Examples:
//   janus prompts                 List prompt templates
//   janus prompts show 3          Show template 3
//   janus prompts delete 3        Delete template 3
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/januscore/janus-cli/internal/api"
	"github.com/januscore/janus-cli/internal/model"
	"github.com/januscore/janus-cli/internal/session"
	"github.com/januscore/janus-cli/internal/storage"
)

// HandlePrompts handles the "prompts" command.
func HandlePrompts(args Args) error {
	switch args.Subcommand {
	case "", "list":
		return listPrompts(args)
	case "show":
		return showPrompt(args)
	case "delete", "rm":
		return deletePrompt(args)
	default:
		return NewValidationError("subcommand", args.Subcommand,
			"must be one of: list, show, delete")
	}
}

// fetchPrompts returns the prompt template catalog, preferring the backend
// and falling back to the offline cache.
func fetchPrompts(args Args) ([]model.PromptTemplate, error) {
	cfg := activeConfig(args)

	client, err := authedClient(cfg)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		prompts, listErr := client.ListPrompts(ctx)
		if listErr == nil {
			if cache := openCache(cfg, args.Quiet); cache != nil {
				_ = cache.ReplacePrompts(prompts)
				cache.Close()
			}
			return prompts, nil
		}
		err = listErr
	}

	cache := openCache(cfg, args.Quiet)
	if cache == nil {
		return nil, err
	}
	defer cache.Close()

	prompts, cacheErr := cache.Prompts()
	if cacheErr != nil {
		return nil, err
	}
	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s backend unreachable, showing cached listings\n",
			warningStyle.Render("[Offline]"))
	}
	return prompts, nil
}

// listPrompts prints the prompt template catalog.
func listPrompts(args Args) error {
	prompts, err := fetchPrompts(args)
	if err != nil {
		return err
	}
	fmt.Print(storage.FormatPromptList(prompts))
	return nil
}

// showPrompt prints one prompt template in full.
func showPrompt(args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("ID", "janus prompts show 3")
	}

	id, err := strconv.ParseInt(args.Raw[0], 10, 64)
	if err != nil {
		return NewValidationError("id", args.Raw[0], "must be a prompt template id")
	}

	prompts, err := fetchPrompts(args)
	if err != nil {
		return err
	}

	for _, p := range prompts {
		if p.ID != id {
			continue
		}
		fmt.Println()
		fmt.Printf("%s %s (#%d)\n", summaryHeaderStyle.Render("Prompt Template"), p.Name, p.ID)
		fmt.Println()
		if p.SystemPrompt != "" {
			fmt.Printf("%s\n%s\n\n", infoStyle.Render("System prompt:"), p.SystemPrompt)
		}
		if p.UserPrompt != "" {
			fmt.Printf("%s\n%s\n\n", infoStyle.Render("User prompt:"), p.UserPrompt)
		}
		return nil
	}
	return api.ErrNotFound
}

// deletePrompt deletes a prompt template on the backend.
func deletePrompt(args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("ID", "janus prompts delete 3")
	}

	id, err := strconv.ParseInt(args.Raw[0], 10, 64)
	if err != nil {
		return NewValidationError("id", args.Raw[0], "must be a prompt template id")
	}

	cfg := activeConfig(args)
	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	ctrl := session.NewController(client, client)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := ctrl.RefreshPrompts(ctx); err != nil {
		return WrapError(err, "list prompts")
	}
	if err := ctrl.DeletePrompt(ctx, id); err != nil {
		return err
	}

	if cache := openCache(cfg, args.Quiet); cache != nil {
		_ = cache.ReplacePrompts(ctrl.Prompts())
		cache.Close()
	}

	fmt.Printf("%s Prompt template #%d deleted\n", commandStyle.Render("[OK]"), id)
	return nil
}
