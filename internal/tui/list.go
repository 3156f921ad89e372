package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each sender occupies.
const linesPerItem = 2

// everyone is the first list entry; it selects the whole-chat view.
const everyone = "Everyone"

type entry struct {
	sender string // "" for the whole chat
	total  int
	media  int
}

func (e entry) label() string {
	if e.sender == "" {
		return everyone
	}
	return e.sender
}

// renderList renders the left panel: the sender list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.entries) <= 1 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No messages")
	}

	var lines []string
	for i, e := range m.entries {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatEntry(e, width, i == m.cursor)...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatEntry formats one sender as two lines:
//
//	line 1: [>] name
//	line 2:    N messages, M media (dimmed)
func formatEntry(e entry, width int, selected bool) []string {
	name := strings.ReplaceAll(e.label(), "\n", " ")
	nameMax := max(width-2, 0)
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "…")
	}

	var line1 string
	if selected {
		line1 = styleListSelected.Render("> " + name)
	} else {
		line1 = "  " + styleListNormal.Render(name)
	}

	detail := fmt.Sprintf("%d messages, %d media", e.total, e.media)
	if runewidth.StringWidth(detail) > max(width-4, 0) {
		detail = runewidth.Truncate(detail, max(width-4, 0), "")
	}
	line2 := "    " + styleListDetail.Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(listHeight/linesPerItem, 1)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
