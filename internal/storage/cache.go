// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the offline listing cache for janus.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/januscore/janus-cli/internal/model"
	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed = errors.New("cache is closed")
	// ErrNotCached indicates the requested entity is not in the cache.
	ErrNotCached = errors.New("not in cache")
)

// =============================================================================
// CACHE
// =============================================================================

// Cache mirrors the backend's conversation and prompt listings in a local
// SQLite database, so 'janus sessions' and 'janus prompts' can show the last
// known state without a network round trip.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	c := &Cache{db: db, path: path}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// initSchema creates the cache tables.
func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id         INTEGER PRIMARY KEY,
		title      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		synced_at  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		conversation_id INTEGER NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		position        INTEGER NOT NULL,
		turn_id         TEXT NOT NULL,
		role            TEXT NOT NULL,
		content         TEXT NOT NULL,
		model           TEXT NOT NULL DEFAULT '',
		timestamp       INTEGER NOT NULL,
		PRIMARY KEY (conversation_id, position)
	);

	CREATE TABLE IF NOT EXISTS prompts (
		id            INTEGER PRIMARY KEY,
		name          TEXT NOT NULL,
		system_prompt TEXT NOT NULL,
		user_prompt   TEXT NOT NULL,
		synced_at     INTEGER NOT NULL
	);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Path returns the cache database path.
func (c *Cache) Path() string {
	return c.path
}

// =============================================================================
// CONVERSATION CACHE
// =============================================================================

// ReplaceConversations replaces the cached conversation listing wholesale
// with a fresh backend snapshot.
func (c *Cache) ReplaceConversations(convs []*model.Conversation) error {
	if c.db == nil {
		return ErrCacheClosed
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM conversations"); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, conv := range convs {
		_, err := tx.Exec(
			"INSERT INTO conversations (id, title, created_at, updated_at, synced_at) VALUES (?, ?, ?, ?, ?)",
			conv.ID, conv.Title, conv.CreatedAt.Unix(), conv.UpdatedAt.Unix(), now,
		)
		if err != nil {
			return err
		}
		for i, t := range conv.Turns {
			_, err := tx.Exec(
				"INSERT INTO turns (conversation_id, position, turn_id, role, content, model, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)",
				conv.ID, i, t.ID, string(t.Role), t.Content, t.Model, t.Timestamp.Unix(),
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Conversations returns the cached conversation listing, most recently
// updated first.
func (c *Cache) Conversations() ([]*model.Conversation, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}

	rows, err := c.db.Query(
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		var (
			conv               model.Conversation
			createdUnix, updUnix int64
		)
		if err := rows.Scan(&conv.ID, &conv.Title, &createdUnix, &updUnix); err != nil {
			return nil, err
		}
		conv.CreatedAt = time.Unix(createdUnix, 0)
		conv.UpdatedAt = time.Unix(updUnix, 0)
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, conv := range convs {
		turns, err := c.turnsFor(conv.ID)
		if err != nil {
			return nil, err
		}
		conv.Turns = turns
	}
	return convs, nil
}

// Conversation returns one cached conversation by id.
func (c *Cache) Conversation(id int64) (*model.Conversation, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}

	var (
		conv                 model.Conversation
		createdUnix, updUnix int64
	)
	err := c.db.QueryRow(
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?", id,
	).Scan(&conv.ID, &conv.Title, &createdUnix, &updUnix)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}
	conv.CreatedAt = time.Unix(createdUnix, 0)
	conv.UpdatedAt = time.Unix(updUnix, 0)

	turns, err := c.turnsFor(id)
	if err != nil {
		return nil, err
	}
	conv.Turns = turns
	return &conv, nil
}

// turnsFor loads the ordered turns of one cached conversation.
func (c *Cache) turnsFor(conversationID int64) ([]*model.Turn, error) {
	rows, err := c.db.Query(
		"SELECT turn_id, role, content, model, timestamp FROM turns WHERE conversation_id = ? ORDER BY position",
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*model.Turn
	for rows.Next() {
		var (
			t        model.Turn
			role     string
			tsUnix   int64
		)
		if err := rows.Scan(&t.ID, &role, &t.Content, &t.Model, &tsUnix); err != nil {
			return nil, err
		}
		t.Role = model.Role(role)
		t.Timestamp = time.Unix(tsUnix, 0)
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}

// =============================================================================
// PROMPT CACHE
// =============================================================================

// ReplacePrompts replaces the cached prompt template listing wholesale.
func (c *Cache) ReplacePrompts(prompts []model.PromptTemplate) error {
	if c.db == nil {
		return ErrCacheClosed
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM prompts"); err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, p := range prompts {
		_, err := tx.Exec(
			"INSERT INTO prompts (id, name, system_prompt, user_prompt, synced_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Name, p.SystemPrompt, p.UserPrompt, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Prompts returns the cached prompt template listing, ordered by name.
func (c *Cache) Prompts() ([]model.PromptTemplate, error) {
	if c.db == nil {
		return nil, ErrCacheClosed
	}

	rows, err := c.db.Query(
		"SELECT id, name, system_prompt, user_prompt FROM prompts ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []model.PromptTemplate
	for rows.Next() {
		var p model.PromptTemplate
		if err := rows.Scan(&p.ID, &p.Name, &p.SystemPrompt, &p.UserPrompt); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// =============================================================================
// LISTING FORMAT
// =============================================================================

// FormatConversationList formats cached conversations as a display table.
func FormatConversationList(convs []*model.Conversation) string {
	if len(convs) == 0 {
		return "No saved conversations."
	}

	var sb strings.Builder
	sb.WriteString("Saved conversations:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(util.PadRight("ID", 8) + " " + util.PadRight("Updated", 18) + " " + util.PadRight("Turns", 6) + " Title\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, conv := range convs {
		sb.WriteString(util.PadRight(util.IntToString(int(conv.ID)), 8) + " " +
			util.PadRight(conv.UpdatedAt.Format("2006-01-02 15:04"), 18) + " " +
			util.PadRight(util.IntToString(conv.TurnCount()), 6) + " " +
			util.TruncateWidth(conv.GetTitle(), 40) + "\n")
	}
	return sb.String()
}

// FormatPromptList formats cached prompt templates as a display table.
func FormatPromptList(prompts []model.PromptTemplate) string {
	if len(prompts) == 0 {
		return "No saved prompts."
	}

	var sb strings.Builder
	sb.WriteString("Saved prompts:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(util.PadRight("ID", 8) + " " + util.PadRight("Name", 24) + " System prompt\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, p := range prompts {
		sb.WriteString(util.PadRight(util.IntToString(int(p.ID)), 8) + " " +
			util.PadRight(util.TruncateWidth(p.Name, 22), 24) + " " +
			util.TruncateWidth(p.SystemPrompt, 40) + "\n")
	}
	return sb.String()
}

// ExportMarkdown renders a conversation as Markdown for sharing.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# " + conv.GetTitle() + "\n\n")
	sb.WriteString("Created: " + conv.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, t := range conv.Turns {
		label := "**" + t.Role.DisplayName() + "**"
		if t.Role == model.RoleAssistant && t.Model != "" {
			label += " (" + t.Model + ")"
		}
		sb.WriteString(label + ":\n\n")
		sb.WriteString(t.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}
