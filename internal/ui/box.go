package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTitledBox renders content inside a single-line border with the title
// centered in the top edge. Content is padded or clipped to fill the box.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	title = truncate(title, innerWidth-2)
	titleLen := lipgloss.Width(title)
	leftPad := (innerWidth - titleLen - 2) / 2
	rightPad := innerWidth - titleLen - 2 - leftPad
	if leftPad < 0 {
		leftPad = 0
	}
	if rightPad < 0 {
		rightPad = 0
	}

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := max(0, height-2)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	if len(lines) == 0 {
		return topBorder + "\n" + bottomBorder
	}
	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// rowFunc formats row i against bgColor. Selected rows use SelectionText for
// contrast.
type rowFunc func(i int, bgColor string, selected bool) string

// renderRows renders count rows, highlighting the selected one, and scrolls
// so the selection stays within height lines.
func (m Model) renderRows(count, selected, width, height int, bgColor string, row rowFunc) string {
	if count == 0 || height <= 0 {
		return ""
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	end := min(count, start+height)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rowBg := bgColor
		if i == selected {
			rowBg = m.theme.SelectionBg
		}
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(rowBg)).
			Width(width).
			MaxWidth(width).
			Render(row(i, rowBg, i == selected)))
	}
	return strings.Join(lines, "\n")
}

// splitWidths divides the content width between a list pane and a detail
// pane. Narrow terminals get the list only.
func (m Model) splitWidths() (list, detail int) {
	if m.width < LayoutSplitWidth {
		return m.width, 0
	}
	if m.width >= LayoutExtraWideWidth {
		list = m.width * 45 / 100
	} else {
		list = m.width * 55 / 100
	}
	return list, m.width - list
}

// contentHeight is the number of lines left for the active view.
func (m Model) contentHeight() int {
	return max(3, m.height-headerLines-footerLines)
}
