// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the backend session token at rest.
//
// Tokens are encrypted with AES-256-GCM before touching disk. The
// encryption key is derived with PBKDF2-SHA-256 from a machine-local
// secret kept alongside the token, so a copied token file is useless
// without the secret file.
//
// # Key Types
//
//   - Store: Encrypted token persistence under the config directory
//
// # Usage
//
// Persist a token after login:
//
//	store, err := auth.NewStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.SaveToken(token); err != nil {
//	    log.Fatal(err)
//	}
//
// Recover it on startup:
//
//	token, err := store.LoadToken()
package auth
