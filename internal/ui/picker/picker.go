// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package picker provides an interactive fuzzy-filtered list for choosing
// a saved conversation or prompt template.
package picker

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/januscore/janus-cli/internal/ui/styles"
	"github.com/januscore/janus-cli/internal/util"
)

// =============================================================================
// ITEMS
// =============================================================================

// Item is one selectable entry: a saved conversation or a prompt template.
type Item struct {
	ID     int64
	Title  string
	Detail string
}

// scoredItem holds an item with its fuzzy match score.
type scoredItem struct {
	item  Item
	score int
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the picker overlay.
type Model struct {
	// Heading shown above the list
	title string

	// Input field for filtering
	input textinput.Model

	// All items and the current filtered view
	items    []Item
	filtered []scoredItem

	// Selected index into filtered
	selected int

	// Result state
	choice   *Item
	canceled bool

	// Dimensions
	width  int
	height int

	// Theme
	theme *styles.Theme

	// Maximum items to show
	maxItems int
}

// New creates a picker over the given items.
func New(title string, items []Item, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 50
	ti.PromptStyle = theme.Prompt
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	ti.Focus()

	m := Model{
		title:    title,
		input:    ti,
		items:    items,
		theme:    theme,
		maxItems: 10,
	}

	m.updateFiltered()

	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the picker.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the picker.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.canceled = true
			return m, tea.Quit

		case "enter":
			if m.selected >= 0 && m.selected < len(m.filtered) {
				chosen := m.filtered[m.selected].item
				m.choice = &chosen
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if len(m.filtered) == 0 {
				return m, nil
			}
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.filtered) - 1
			}
			return m, nil

		case "down", "ctrl+n", "tab":
			if len(m.filtered) == 0 {
				return m, nil
			}
			m.selected++
			if m.selected >= len(m.filtered) {
				m.selected = 0
			}
			return m, nil
		}
	}

	previousValue := m.input.Value()
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != previousValue {
		m.updateFiltered()
		m.selected = 0
	}

	return m, cmd
}

// View renders the picker.
func (m Model) View() string {
	boxWidth := 60
	if m.width > 0 && m.width < boxWidth+10 {
		boxWidth = m.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	header := m.theme.Title.Padding(0, 1).Render(m.title)
	separator := m.theme.Divider.Render(strings.Repeat("-", boxWidth-4))

	m.input.Width = boxWidth - 6
	inputView := m.input.View()

	var listItems []string
	for i, si := range m.filtered {
		if i >= m.maxItems {
			remaining := len(m.filtered) - m.maxItems
			if remaining > 0 {
				listItems = append(listItems, m.theme.Muted.Italic(true).
					Render("  ... "+util.IntToString(remaining)+" more"))
			}
			break
		}

		listItems = append(listItems, m.renderItem(si.item, i == m.selected, boxWidth-6))
	}

	list := strings.Join(listItems, "\n")

	if len(m.filtered) == 0 {
		list = m.theme.Muted.Italic(true).Padding(1, 0).Render("No matching entries")
	}

	help := m.theme.Muted.Padding(1, 0, 0, 0).
		Render("Up/Down navigate | Enter select | Esc cancel")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		separator,
		inputView,
		separator,
		list,
		help,
	)

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(1, 2).
		Width(boxWidth).
		Render(content)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(
			m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			box,
		)
	}

	return box
}

// =============================================================================
// INTERNAL METHODS
// =============================================================================

// renderItem renders a single list entry.
func (m Model) renderItem(item Item, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	title := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render(item.Title)

	usedWidth := lipgloss.Width(indicator) + lipgloss.Width(title) + 2
	detailWidth := width - usedWidth
	if detailWidth < 10 {
		detailWidth = 10
	}

	detail := m.theme.Muted.Render(util.TruncateWidth(item.Detail, detailWidth))

	row := indicator + title + "  " + detail

	if selected {
		return m.theme.ListSelected.Width(width).Padding(0, 1).Render(row)
	}

	return row
}

// updateFiltered recomputes the filtered list from the input value.
func (m *Model) updateFiltered() {
	filter := strings.TrimSpace(m.input.Value())

	if filter == "" {
		scored := make([]scoredItem, 0, len(m.items))
		for _, item := range m.items {
			scored = append(scored, scoredItem{item: item})
		}
		m.filtered = scored
		return
	}

	var scored []scoredItem
	for _, item := range m.items {
		titleScore, titleMatched := FuzzyMatch(filter, item.Title)
		detailScore, detailMatched := FuzzyMatch(filter, item.Detail)

		best := 0
		matched := false
		if titleMatched {
			best = titleScore
			matched = true
		}
		if detailMatched && detailScore/2 > best {
			// Detail matches get lower priority
			best = detailScore / 2
			matched = true
		}

		if matched {
			scored = append(scored, scoredItem{item: item, score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	m.filtered = scored
}

// =============================================================================
// PUBLIC METHODS
// =============================================================================

// Choice returns the selected item, or nil if the picker was canceled.
func (m Model) Choice() *Item {
	return m.choice
}

// Canceled returns true if the picker was dismissed without a selection.
func (m Model) Canceled() bool {
	return m.canceled
}

// Run displays the picker and blocks until a choice is made or canceled.
// Returns nil when the user dismisses the picker.
func Run(title string, items []Item, theme *styles.Theme) (*Item, error) {
	p := tea.NewProgram(New(title, items, theme))

	final, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	return m.Choice(), nil
}

