// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the offline listing cache for janus.
//
// The cache is a local SQLite mirror of the backend's conversation and
// prompt listings. It is refreshed wholesale after every successful list
// call and consulted when the backend is unreachable, so listing commands
// degrade to last-known state instead of failing outright.
//
// # Key Types
//
//   - Cache: SQLite-backed mirror of backend listings
//
// # Usage
//
//	cache, err := storage.Open(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
//	if err := cache.ReplaceConversations(convs); err != nil {
//	    log.Printf("cache update failed: %v", err)
//	}
//
// # Storage Location
//
// The cache database lives at ~/.janus/cache.db by default.
package storage
