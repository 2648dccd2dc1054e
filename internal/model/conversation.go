// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

import "time"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// UnsavedID is the sentinel conversation ID for conversations that have not
// been persisted to the backend yet. The backend assigns positive integer IDs.
const UnsavedID int64 = 0

// Conversation holds a chat conversation with its history and metadata.
//
// Turn order is significant (index = chronological position) and is never
// reordered: history changes only by append, truncate, in-place edit, or
// delete by index.
type Conversation struct {
	// Identity. ID is UnsavedID until the conversation is saved; the backend
	// assigns an ID (and a title, if none was supplied) on first save.
	ID        int64     `json:"id,omitempty"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Turns
	Turns []*Turn `json:"messages"`
}

// NewConversation creates a new empty, unsaved conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        UnsavedID,
		CreatedAt: now,
		UpdatedAt: now,
		Turns:     make([]*Turn, 0),
	}
}

// Saved reports whether the conversation has a backend-assigned ID.
func (c *Conversation) Saved() bool {
	return c.ID != UnsavedID
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(t *Turn) {
	c.Turns = append(c.Turns, t)
	c.UpdatedAt = time.Now()
}

// LastTurn returns the most recent turn, or nil if the conversation is empty.
func (c *Conversation) LastTurn() *Turn {
	if len(c.Turns) == 0 {
		return nil
	}
	return c.Turns[len(c.Turns)-1]
}

// LastUserTurn returns the most recent user turn by scanning from the end.
// The last element may itself be an assistant turn, so this is not simply
// the final element.
func (c *Conversation) LastUserTurn() *Turn {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser {
			return c.Turns[i]
		}
	}
	return nil
}

// TurnByID returns the turn with the given ID, or nil if not present.
func (c *Conversation) TurnByID(id string) *Turn {
	for _, t := range c.Turns {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// IndexOf returns the index of the turn with the given ID, or -1.
func (c *Conversation) IndexOf(id string) int {
	for i, t := range c.Turns {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// RemoveAt removes exactly the turn at the given index, preserving the
// relative order of the remaining turns. Returns false if out of range.
func (c *Conversation) RemoveAt(index int) bool {
	if index < 0 || index >= len(c.Turns) {
		return false
	}
	c.Turns = append(c.Turns[:index], c.Turns[index+1:]...)
	c.UpdatedAt = time.Now()
	return true
}

// TruncateAfter drops every turn after the given index, keeping turns
// [0, index]. A negative index empties the conversation.
func (c *Conversation) TruncateAfter(index int) {
	if index < -1 {
		index = -1
	}
	if index >= len(c.Turns)-1 {
		return
	}
	c.Turns = c.Turns[:index+1]
	c.UpdatedAt = time.Now()
}

// TurnCount returns the number of turns.
func (c *Conversation) TurnCount() int {
	return len(c.Turns)
}

// IsEmpty returns true if there are no turns.
func (c *Conversation) IsEmpty() bool {
	return len(c.Turns) == 0
}

// =============================================================================
// TITLE AND PREVIEW
// =============================================================================

// GetTitle returns the conversation title or a default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return "New Conversation"
}

// Preview returns a short preview of the conversation for list display.
func (c *Conversation) Preview() string {
	if len(c.Turns) == 0 {
		return "Empty conversation"
	}

	first := c.Turns[0]
	for _, t := range c.Turns {
		if t.Role == RoleUser {
			first = t
			break
		}
	}
	return first.Preview(80)
}

// =============================================================================
// COPY HELPERS
// =============================================================================

// Clone creates a deep copy of the conversation. Saved-conversation list
// entries are independent snapshots of the active conversation, so loading
// and editing one must never mutate the other.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Turns:     make([]*Turn, len(c.Turns)),
	}
	for i, t := range c.Turns {
		turnCopy := *t
		clone.Turns[i] = &turnCopy
	}
	return clone
}
