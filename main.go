// janus - terminal client for the Janus Core playground.
//
// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/januscore/janus-cli/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	var err error
	switch cmd {
	case cli.CmdChat:
		err = cli.HandleChatCommand(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdRegister:
		err = cli.HandleRegister(args)
	case cli.CmdSessions:
		err = cli.HandleSessions(args)
	case cli.CmdPrompts:
		err = cli.HandlePrompts(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		if len(args.Raw) > 0 {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Raw[0])
		}
		cli.PrintUsage()
		if len(args.Raw) > 0 {
			os.Exit(cli.ExitUsageError)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
