// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Authentication command handlers for janus.
//
// Handles "janus login", "janus logout", and "janus register". The password
// is read without echo; the session token is stored encrypted at rest.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/januscore/janus-cli/internal/auth"
)

// authTimeout bounds login and register calls.
const authTimeout = 30 * time.Second

// =============================================================================
// CREDENTIAL PROMPTS
// =============================================================================

// promptUsername reads a username from stdin.
func promptUsername() (string, error) {
	fmt.Print("Username: ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read username: %w", err)
	}

	username := strings.TrimSpace(input)
	if username == "" {
		return "", NewValidationError("username", "", "must not be empty")
	}
	return username, nil
}

// promptPassword reads a password without echoing it.
// SECURITY: Password bytes are zeroed after conversion.
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := string(raw)
	auth.ZeroBytes(raw)

	if password == "" {
		return "", NewValidationError("password", "", "must not be empty")
	}
	return password, nil
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleLogin handles the "login" command.
func HandleLogin(args Args) error {
	if err := RequiresTTY("log in"); err != nil {
		return err
	}

	cfg := activeConfig(args)

	username, err := promptUsername()
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	client := newClient(cfg)
	token, err := client.Login(ctx, username, password)
	if err != nil {
		return WrapError(err, "login failed")
	}

	store, err := auth.NewStore()
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	if err := store.SaveToken(token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	fmt.Printf("%s Logged in as %s\n", commandStyle.Render("[OK]"), username)
	fmt.Printf("%s %s\n", infoStyle.Render("Backend:"), cfg.Server.URL)
	return nil
}

// HandleLogout handles the "logout" command. Removing a token that does not
// exist is not an error.
func HandleLogout(args Args) error {
	store, err := auth.NewStore()
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}

	if !store.HasToken() {
		fmt.Println(infoStyle.Render("No stored session token."))
		return nil
	}

	if err := store.ClearToken(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	fmt.Printf("%s Logged out\n", commandStyle.Render("[OK]"))
	return nil
}

// HandleRegister handles the "register" command. On success the new account
// is logged in immediately.
func HandleRegister(args Args) error {
	if err := RequiresTTY("register"); err != nil {
		return err
	}

	cfg := activeConfig(args)

	username, err := promptUsername()
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return NewValidationError("password", "", "passwords do not match")
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	client := newClient(cfg)
	if err := client.Register(ctx, username, password); err != nil {
		return WrapError(err, "registration failed")
	}

	token, err := client.Login(ctx, username, password)
	if err != nil {
		fmt.Printf("%s Account created; run 'janus login' to authenticate\n",
			commandStyle.Render("[OK]"))
		return nil
	}

	store, err := auth.NewStore()
	if err != nil {
		return fmt.Errorf("token store: %w", err)
	}
	if err := store.SaveToken(token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	fmt.Printf("%s Account created and logged in as %s\n",
		commandStyle.Render("[OK]"), username)
	return nil
}
