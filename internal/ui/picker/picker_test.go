// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/januscore/janus-cli/internal/ui/styles"
)

func testItems() []Item {
	return []Item{
		{ID: 1, Title: "Category theory", Detail: "4 turns"},
		{ID: 2, Title: "Rust lifetimes", Detail: "2 turns"},
		{ID: 3, Title: "Fork of: Category theory", Detail: "6 turns"},
	}
}

func keyPress(m Model, key string) Model {
	var msg tea.Msg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestNew_ShowsAllItems(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	if len(m.filtered) != 3 {
		t.Fatalf("filtered = %d items, want 3", len(m.filtered))
	}
	if m.selected != 0 {
		t.Errorf("initial selection = %d, want 0", m.selected)
	}
}

func TestUpdate_FilterNarrowsList(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	for _, r := range "rust" {
		m = keyPress(m, string(r))
	}

	if len(m.filtered) != 1 {
		t.Fatalf("filtered = %d items, want 1", len(m.filtered))
	}
	if m.filtered[0].item.ID != 2 {
		t.Errorf("filtered item ID = %d, want 2", m.filtered[0].item.ID)
	}
}

func TestUpdate_FilterResetsSelection(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	m = keyPress(m, "down")
	if m.selected != 1 {
		t.Fatalf("selected = %d after down, want 1", m.selected)
	}

	m = keyPress(m, "c")
	if m.selected != 0 {
		t.Errorf("selected = %d after filtering, want 0", m.selected)
	}
}

func TestUpdate_NavigationWraps(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	m = keyPress(m, "up")
	if m.selected != 2 {
		t.Errorf("up from top selected = %d, want 2", m.selected)
	}

	m = keyPress(m, "down")
	if m.selected != 0 {
		t.Errorf("down from bottom selected = %d, want 0", m.selected)
	}
}

func TestUpdate_EnterSelects(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	m = keyPress(m, "down")
	m = keyPress(m, "enter")

	choice := m.Choice()
	if choice == nil {
		t.Fatal("Choice() = nil after enter")
	}
	if choice.ID != 2 {
		t.Errorf("choice ID = %d, want 2", choice.ID)
	}
	if m.Canceled() {
		t.Error("Canceled() = true after selection")
	}
}

func TestUpdate_EscCancels(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	m = keyPress(m, "esc")

	if !m.Canceled() {
		t.Error("Canceled() = false after esc")
	}
	if m.Choice() != nil {
		t.Errorf("Choice() = %+v after esc, want nil", m.Choice())
	}
}

func TestUpdate_EnterOnEmptyListIsNoop(t *testing.T) {
	m := New("Load conversation", nil, styles.NewTheme())

	m = keyPress(m, "enter")

	if m.Choice() != nil {
		t.Errorf("Choice() = %+v with no items, want nil", m.Choice())
	}
	if m.Canceled() {
		t.Error("Canceled() = true, want false")
	}
}

func TestView_RendersTitleAndItems(t *testing.T) {
	m := New("Load conversation", testItems(), styles.NewTheme())

	view := m.View()
	for _, want := range []string{"Load conversation", "Category theory", "Rust lifetimes"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		query   string
		target  string
		matched bool
	}{
		{"", "anything", true},
		{"cat", "Category theory", true},
		{"cth", "Category theory", true},
		{"xyz", "Category theory", false},
		{"toolong", "cat", false},
	}

	for _, tt := range tests {
		_, matched := FuzzyMatch(tt.query, tt.target)
		if matched != tt.matched {
			t.Errorf("FuzzyMatch(%q, %q) matched = %v, want %v",
				tt.query, tt.target, matched, tt.matched)
		}
	}
}

func TestFuzzyMatch_PrefersConsecutiveAndPrefix(t *testing.T) {
	prefixScore, ok := FuzzyMatch("cat", "category")
	if !ok {
		t.Fatal("prefix match failed")
	}
	scatteredScore, ok := FuzzyMatch("cat", "conversation about things")
	if !ok {
		t.Fatal("scattered match failed")
	}
	if prefixScore <= scatteredScore {
		t.Errorf("prefix score %d <= scattered score %d", prefixScore, scatteredScore)
	}
}
