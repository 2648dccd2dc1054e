// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Janus Core playground backend.
//
// The backend exposes a small REST surface: bearer-token login, prompt
// template CRUD, conversation CRUD with fork, and a single non-streaming
// generate endpoint. This package wraps that surface with typed requests,
// typed sentinel errors, and context support on every call.
//
// # Key Types
//
//   - Client: the backend client; one instance per session
//   - ServerError: non-2xx response with optional backend message
//   - GenerateRequest: model + prompts + history + sampling parameters
//
// # Error Handling
//
// Errors are classified so callers can react without string matching:
//
//	ErrAuthFailed        401: token missing, expired, or rejected
//	ErrNotFound          404: prompt or conversation does not exist
//	ErrNotAuthenticated  no token stored; log in first
//
// Network failures wrap the underlying error; non-2xx responses produce a
// *ServerError. Calls are never retried: a failure surfaces once and leaves
// the caller's state untouched.
package api
