// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/januscore/janus-cli/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func sampleConversation(id int64, title string) *model.Conversation {
	conv := model.NewConversation()
	conv.ID = id
	conv.Title = title
	conv.Append(model.NewUserTurn("What is a monad?"))
	conv.Append(model.NewAssistantTurn("A monoid in the category of endofunctors.", "gpt-4"))
	return conv
}

func TestCache_ReplaceAndListConversations(t *testing.T) {
	cache := openTestCache(t)

	first := sampleConversation(1, "Category theory")
	second := sampleConversation(2, "Daily standup")
	second.UpdatedAt = first.UpdatedAt.Add(time.Hour)

	if err := cache.ReplaceConversations([]*model.Conversation{first, second}); err != nil {
		t.Fatalf("ReplaceConversations: %v", err)
	}

	convs, err := cache.Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("cached conversations = %d, want 2", len(convs))
	}
	// Most recently updated first.
	if convs[0].ID != 2 {
		t.Errorf("first listed id = %d, want 2", convs[0].ID)
	}
	if convs[0].Title != "Daily standup" {
		t.Errorf("title = %q", convs[0].Title)
	}
	if convs[1].TurnCount() != 2 {
		t.Fatalf("turn count = %d, want 2", convs[1].TurnCount())
	}
	if convs[1].Turns[1].Role != model.RoleAssistant {
		t.Errorf("second turn role = %s", convs[1].Turns[1].Role)
	}
	if convs[1].Turns[1].Model != "gpt-4" {
		t.Errorf("model tag = %q", convs[1].Turns[1].Model)
	}
}

func TestCache_ReplaceIsWholesale(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.ReplaceConversations([]*model.Conversation{
		sampleConversation(1, "old"),
		sampleConversation(2, "older"),
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	if err := cache.ReplaceConversations([]*model.Conversation{
		sampleConversation(3, "fresh"),
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	convs, err := cache.Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("cached conversations = %d, want 1 after wholesale replace", len(convs))
	}
	if convs[0].ID != 3 {
		t.Errorf("remaining id = %d, want 3", convs[0].ID)
	}
}

func TestCache_ConversationByID(t *testing.T) {
	cache := openTestCache(t)

	if err := cache.ReplaceConversations([]*model.Conversation{sampleConversation(7, "target")}); err != nil {
		t.Fatalf("ReplaceConversations: %v", err)
	}

	conv, err := cache.Conversation(7)
	if err != nil {
		t.Fatalf("Conversation: %v", err)
	}
	if conv.Title != "target" {
		t.Errorf("title = %q", conv.Title)
	}

	if _, err := cache.Conversation(999); !errors.Is(err, ErrNotCached) {
		t.Errorf("error = %v, want ErrNotCached", err)
	}
}

func TestCache_Prompts(t *testing.T) {
	cache := openTestCache(t)

	prompts := []model.PromptTemplate{
		{ID: 2, Name: "zebra", SystemPrompt: "sys-z", UserPrompt: "user-z"},
		{ID: 1, Name: "alpha", SystemPrompt: "sys-a", UserPrompt: "user-a"},
	}
	if err := cache.ReplacePrompts(prompts); err != nil {
		t.Fatalf("ReplacePrompts: %v", err)
	}

	got, err := cache.Prompts()
	if err != nil {
		t.Fatalf("Prompts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cached prompts = %d, want 2", len(got))
	}
	// Ordered by name.
	if got[0].Name != "alpha" || got[1].Name != "zebra" {
		t.Errorf("order = %q, %q", got[0].Name, got[1].Name)
	}
	if got[0].SystemPrompt != "sys-a" || got[0].UserPrompt != "user-a" {
		t.Errorf("prompt fields = %+v", got[0])
	}
}

func TestCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cache.ReplaceConversations([]*model.Conversation{sampleConversation(1, "persistent")}); err != nil {
		t.Fatalf("ReplaceConversations: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	convs, err := reopened.Conversations()
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 1 || convs[0].Title != "persistent" {
		t.Errorf("cache did not survive reopen: %+v", convs)
	}
}

func TestCache_ClosedErrors(t *testing.T) {
	cache := openTestCache(t)
	cache.Close()

	if _, err := cache.Conversations(); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Conversations error = %v, want ErrCacheClosed", err)
	}
	if err := cache.ReplacePrompts(nil); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("ReplacePrompts error = %v, want ErrCacheClosed", err)
	}
}

func TestFormatConversationList(t *testing.T) {
	out := FormatConversationList([]*model.Conversation{sampleConversation(42, "Category theory")})
	if !strings.Contains(out, "42") {
		t.Errorf("listing missing id:\n%s", out)
	}
	if !strings.Contains(out, "Category theory") {
		t.Errorf("listing missing title:\n%s", out)
	}

	if got := FormatConversationList(nil); got != "No saved conversations." {
		t.Errorf("empty listing = %q", got)
	}
}

func TestExportMarkdown(t *testing.T) {
	conv := sampleConversation(1, "Category theory")
	out := ExportMarkdown(conv)

	if !strings.Contains(out, "# Category theory") {
		t.Errorf("missing title heading:\n%s", out)
	}
	if !strings.Contains(out, "**You**") && !strings.Contains(out, "**User**") {
		t.Errorf("missing user label:\n%s", out)
	}
	if !strings.Contains(out, "monoid in the category") {
		t.Errorf("missing assistant content:\n%s", out)
	}
	if !strings.Contains(out, "(gpt-4)") {
		t.Errorf("missing producing model:\n%s", out)
	}
}
