package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/dispatch"
	"github.com/five82/shopdeck/internal/storefront"
)

// displayName renders "Name (email)", falling back to whichever is set.
func displayName(name, email string) string {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	switch {
	case name != "" && email != "":
		return name + " (" + email + ")"
	case name != "":
		return name
	default:
		return email
	}
}

// renderMessages renders unanswered customer messages with a scrollable
// detail pane for the selection.
func (m Model) renderMessages() string {
	messages := m.console.MessagesState().Visible
	if len(messages) == 0 {
		return m.renderEmpty("Inbox zero. No messages waiting")
	}
	height := m.contentHeight()
	selected := clamp(m.selected[console.CustomerService], len(messages))
	listWidth, detailWidth := m.splitWidths()

	rows := m.renderRows(len(messages), selected, listWidth-2, height-2, m.theme.FocusBg,
		func(i int, bgColor string, isSelected bool) string {
			return m.formatMessageRow(messages[i], listWidth-2, bgColor, isSelected)
		})
	list := m.renderTitledBox(fmt.Sprintf("Customer Messages (%d)", len(messages)), rows, listWidth, height, true)
	if detailWidth == 0 {
		return list
	}

	vp := m.detail
	vp.Width = detailWidth - 4
	vp.Height = height - 2
	vp.SetContent(m.renderMessageDetail(messages[selected], detailWidth-4))
	detail := m.renderTitledBox(truncate(messages[selected].Subject, detailWidth-6), vp.View(), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// syncDetail loads the selected message into the detail viewport so scroll
// offsets are clamped against the real content.
func (m *Model) syncDetail() {
	msg, ok := m.selectedMessage()
	if !ok {
		return
	}
	_, detailWidth := m.splitWidths()
	if detailWidth == 0 {
		return
	}
	m.detail.Width = detailWidth - 4
	m.detail.Height = m.contentHeight() - 2
	m.detail.SetContent(m.renderMessageDetail(msg, detailWidth-4))
}

// formatMessageRow formats "Subject  From  Received".
func (m Model) formatMessageRow(msg storefront.CustomerMessage, width int, bgColor string, selected bool) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	text := styles.Text
	muted := styles.MutedText
	if selected {
		text = text.Foreground(lipgloss.Color(m.theme.SelectionText))
		muted = text
	}

	state := ternary(msg.Answered, "answered", "unanswered")
	label := titleCase(state)
	if m.console.InFlight(dispatch.KindRespond, msg.ID) {
		label = "Sending…"
	}
	badge := styles.StatusStyle(state).Render(label)

	fixed := lipgloss.Width(badge) + 1 + 16 + 1
	subjectWidth := max(8, (width-fixed)*3/5)
	fromWidth := max(0, width-fixed-subjectWidth-1)

	row := badge + bg.Space() + bg.Column(msg.Subject, subjectWidth, text) + bg.Space()
	if fromWidth > 4 {
		row += bg.Column(ternary(msg.CustomerName != "", msg.CustomerName, msg.CustomerEmail), fromWidth, muted) + bg.Space()
	}
	return row + bg.Column(formatDate(msg.ParsedCreatedAt(), msg.CreatedAt), 16, muted)
}

// renderMessageDetail renders the message body and any AI response.
func (m Model) renderMessageDetail(msg storefront.CustomerMessage, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	field := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			return bg.Column(label, 10, styles.MutedText) + bg.Render("-", styles.FaintText)
		}
		return bg.Column(label, 10, styles.MutedText) + bg.Render(truncate(value, width-11), styles.Text)
	}

	order := ""
	if msg.OrderID != "" {
		order = "#" + msg.OrderID
	}

	lines := []string{
		field("From", displayName(msg.CustomerName, msg.CustomerEmail)),
		field("Order", order),
		field("Received", formatDate(msg.ParsedCreatedAt(), msg.CreatedAt)),
		"",
	}
	for _, line := range wrapText(msg.Message, width) {
		lines = append(lines, bg.Render(line, styles.Text))
	}

	if strings.TrimSpace(msg.AIResponse) != "" {
		lines = append(lines, "", bg.Render("AI Response", styles.AccentText.Bold(true)))
		for _, line := range wrapText(msg.AIResponse, width) {
			lines = append(lines, bg.Render(line, styles.InfoText))
		}
		if msg.RespondedAt != "" {
			lines = append(lines, bg.Render("Responded "+msg.RespondedAt, styles.FaintText))
		}
	}

	if !msg.Answered {
		lines = append(lines, "", bg.Render("Press r to auto-respond", styles.WarningText))
	}
	return strings.Join(lines, "\n")
}
