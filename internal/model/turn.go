// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the known turn authors.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn represents a single message in a conversation.
//
// Every turn carries a locally generated ID so that edit, delete, and
// regenerate-from operations can address a turn unambiguously even when two
// turns share identical role and content. Turns are never matched by content.
type Turn struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Model is the model that produced an assistant turn; empty for user turns.
	Model string `json:"model,omitempty"`
}

// NewTurn creates a new turn with a generated ID.
func NewTurn(role Role, content string) *Turn {
	return &Turn{
		ID:        generateTurnID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserTurn creates a new user turn.
func NewUserTurn(content string) *Turn {
	return NewTurn(RoleUser, content)
}

// NewAssistantTurn creates a new assistant turn tagged with the producing model.
func NewAssistantTurn(content, producingModel string) *Turn {
	t := NewTurn(RoleAssistant, content)
	t.Model = producingModel
	return t
}

// Preview returns a truncated single-line preview of the turn content.
// Uses rune-based truncation to handle Unicode correctly.
func (t *Turn) Preview(maxLen int) string {
	return util.TruncateRunes(t.Content, maxLen)
}

// IsEmpty returns true if the turn has no content.
func (t *Turn) IsEmpty() bool {
	return len(t.Content) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateTurnID creates a unique turn ID.
func generateTurnID() string {
	return "turn_" + uuid.NewString()
}
