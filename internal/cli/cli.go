// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for janus.
package cli

import (
	"fmt"
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
	CmdChat Command = iota
	CmdLogin
	CmdLogout
	CmdRegister
	CmdSessions
	CmdPrompts
	CmdConfig
	CmdStatus
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string
	Server  string

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `janus - terminal client for the Janus Core playground

Janus talks to a Janus Core backend: authenticate, pick a model, tune
sampling parameters, chat, and save, fork, and reload conversations and
prompt templates.

Usage:
  janus                       Start interactive chat (default)
  janus chat                  Interactive chat
  janus login                 Authenticate and store a session token
  janus logout                Remove the stored session token
  janus register              Create a new account
  janus sessions [list|show ID|export ID FILE|delete ID]
                              Saved conversations
  janus prompts [list|show ID|delete ID]
                              Saved prompt templates
  janus config [show|path|get|set] Configuration
  janus status, s             Backend reachability and auth state
  janus version               Version information
  janus help                  This help

Interactive Commands (during chat):
  /help, /h           Show available commands
  /model [name]       Show or switch model
  /system [text]      Show or set the system prompt
  /params [set K V]   Show or set sampling parameters
  /regen [N]          Regenerate the last reply, or from turn N
  /edit N             Edit turn N (prompts for new text)
  /delete N           Delete turn N
  /save [title]       Save the conversation
  /fork               Fork the conversation
  /load               Load a saved conversation (picker)
  /sessions           List saved conversations
  /prompts            List saved prompt templates
  /prompt save NAME   Save current prompts as a template
  /prompt load        Load a template (picker)
  /prompt delete ID   Delete a template
  /export [FILE]      Export the conversation as Markdown
  /history            Show the conversation transcript
  /clear, /c          Start a fresh conversation
  /status, /s         Show session status
  /quit, /q           Exit chat

Global Flags:
  -q, --quiet     Minimal output
  -v, --verbose   Debug output (logs API requests)
  --model NAME    Override the default model
  --server URL    Override the backend URL

Environment:
  JANUS_SERVER_URL   Backend URL override
  JANUS_MODEL        Default model override
  JANUS_THEME        Theme override (dark, light, auto)

Examples:
  janus login                          Authenticate against the backend
  janus chat --model claude-3.5-sonnet Chat with a specific model
  janus sessions list                  List saved conversations
  janus sessions delete 3              Delete saved conversation 3
  janus config set server.url http://localhost:5000
  janus status                         Check backend and auth state

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("janus version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No command defaults to interactive chat
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "login":
		return CmdLogin, parsedArgs

	case "logout":
		return CmdLogout, parsedArgs

	case "register":
		return CmdRegister, parsedArgs

	case "session", "sessions":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
			parsedArgs.Raw = remaining[1:]
		}
		return CmdSessions, parsedArgs

	case "prompt", "prompts":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
			parsedArgs.Raw = remaining[1:]
		}
		return CmdPrompts, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: show help rather than guessing
		parsedArgs.Raw = append([]string{cmd}, remaining...)
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
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--server":
			if i+1 < len(args) {
				i++
				parsedArgs.Server = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--server="):
				parsedArgs.Server = strings.TrimPrefix(arg, "--server=")
			default:
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
