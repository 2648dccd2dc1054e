// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, turns,
// sampling parameters, and prompt templates.
//
// This package defines the core domain types used throughout janus-cli
// for representing the active chat session and the catalogs cached from
// the playground backend.
//
// # Key Types
//
//   - Conversation: ordered list of turns plus title/id metadata
//   - Turn: single message authored by "user" or "assistant"
//   - SamplingParams: generation-control values, tracked per model
//   - PromptTemplate: reusable system/user prompt pair
//   - Role: turn author enumeration (user, assistant)
//
// # Usage
//
// Create a conversation and append turns:
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserTurn("Hello!"))
//	conv.Append(model.NewAssistantTurn("Hi there.", "gpt-4"))
//
// Look up sampling parameters, defaulting on first access:
//
//	params := settings.For("claude-3-opus-20240229")
package model
