// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Saved conversation command handlers for janus.
//
// Handles "janus sessions" and its subcommands. Listings come from the
// backend when it is reachable and from the offline cache otherwise.
//
// Command: sessions
// Short:   List and manage saved conversations
// Aliases: session
//
// Examples:
//   janus sessions                List saved conversations
//   janus sessions show 3         Show conversation 3 as markdown
//   janus sessions export 3 f.md  Export conversation 3 to a file
//   janus sessions delete 3       Delete conversation 3
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/januscore/janus-cli/internal/model"
	"github.com/januscore/janus-cli/internal/session"
	"github.com/januscore/janus-cli/internal/storage"
	"github.com/januscore/janus-cli/internal/util"
)

// listTimeout bounds catalog calls issued by one-shot commands.
const listTimeout = 15 * time.Second

// HandleSessions handles the "sessions" command.
func HandleSessions(args Args) error {
	switch args.Subcommand {
	case "", "list":
		return listSessions(args)
	case "show":
		return showSession(args)
	case "export":
		return exportSession(args)
	case "delete", "rm":
		return deleteSession(args)
	default:
		return NewValidationError("subcommand", args.Subcommand,
			"must be one of: list, show, export, delete")
	}
}

// fetchConversations returns the saved conversation catalog, preferring the
// backend and falling back to the offline cache.
func fetchConversations(args Args) ([]*model.Conversation, error) {
	cfg := activeConfig(args)

	client, err := authedClient(cfg)
	if err == nil {
		ctrl := session.NewController(client, client)
		ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
		defer cancel()

		convs, refreshErr := ctrl.RefreshConversations(ctx)
		if refreshErr == nil {
			if cache := openCache(cfg, args.Quiet); cache != nil {
				_ = cache.ReplaceConversations(convs)
				cache.Close()
			}
			return convs, nil
		}
		err = refreshErr
	}

	// RELIABILITY: Fall back to the offline cache so listings keep working
	// when the backend is down.
	cache := openCache(cfg, args.Quiet)
	if cache == nil {
		return nil, err
	}
	defer cache.Close()

	convs, cacheErr := cache.Conversations()
	if cacheErr != nil {
		return nil, err
	}
	if !args.Quiet {
		fmt.Fprintf(os.Stderr, "%s backend unreachable, showing cached listings\n",
			warningStyle.Render("[Offline]"))
	}
	return convs, nil
}

// listSessions prints the saved conversation catalog.
func listSessions(args Args) error {
	convs, err := fetchConversations(args)
	if err != nil {
		return err
	}
	fmt.Print(storage.FormatConversationList(convs))
	return nil
}

// sessionByID finds a conversation in the catalog by id.
func sessionByID(args Args, raw string) (*model.Conversation, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, NewValidationError("id", raw, "must be a conversation id")
	}

	convs, err := fetchConversations(args)
	if err != nil {
		return nil, err
	}
	for _, c := range convs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, session.ErrNotFound
}

// showSession prints one conversation as markdown.
func showSession(args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("ID", "janus sessions show 3")
	}

	conv, err := sessionByID(args, args.Raw[0])
	if err != nil {
		return err
	}

	displayResponse(storage.ExportMarkdown(conv))
	return nil
}

// exportSession writes one conversation to a markdown file.
func exportSession(args Args) error {
	if len(args.Raw) < 2 {
		return ErrMissingArgument("ID FILE", "janus sessions export 3 chat.md")
	}

	conv, err := sessionByID(args, args.Raw[0])
	if err != nil {
		return err
	}

	path := args.Raw[1]
	if err := util.AtomicWriteFile(path, []byte(storage.ExportMarkdown(conv)), 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("%s Exported #%d (%d turns) to %s\n",
		commandStyle.Render("[OK]"), conv.ID, conv.TurnCount(), path)
	return nil
}

// deleteSession deletes a saved conversation on the backend.
func deleteSession(args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("ID", "janus sessions delete 3")
	}

	id, err := strconv.ParseInt(args.Raw[0], 10, 64)
	if err != nil {
		return NewValidationError("id", args.Raw[0], "must be a conversation id")
	}

	cfg := activeConfig(args)
	client, err := authedClient(cfg)
	if err != nil {
		return err
	}

	ctrl := session.NewController(client, client)
	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	// Refresh first so the controller knows the catalog.
	if _, err := ctrl.RefreshConversations(ctx); err != nil {
		return WrapError(err, "list conversations")
	}
	if err := ctrl.Delete(ctx, id); err != nil {
		return err
	}

	if cache := openCache(cfg, args.Quiet); cache != nil {
		_ = cache.ReplaceConversations(ctrl.SavedConversations())
		cache.Close()
	}

	fmt.Printf("%s Conversation #%d deleted\n", commandStyle.Render("[OK]"), id)
	return nil
}
