// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for janus.
//
// This package implements all CLI commands for the janus playground client,
// from the interactive chat REPL down to one-shot listing and configuration
// commands.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//   - ChatSession: State for an interactive chat session
//   - ValidationError: Argument errors with field, reason, and usage example
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdChat:
//	    return cli.HandleChatCommand(args)
//	case cli.CmdLogin:
//	    return cli.HandleLogin(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
// Core Commands:
//   - chat: Interactive chat session (default command)
//   - sessions: List, show, export, and delete saved conversations
//   - prompts: List, show, and delete prompt templates
//   - status: Backend reachability and session status
//   - config: Configuration management
//
// Account Commands:
//   - login: Authenticate against the backend
//   - logout: Remove the stored session token
//   - register: Create a new account
//
// Listing commands fall back to the offline cache when the backend is
// unreachable; mutating commands require a live backend.
package cli
