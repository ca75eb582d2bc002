package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/storefront"
)

// renderAds renders ad campaigns with a detail pane for the selection.
func (m Model) renderAds() string {
	campaigns := m.console.AdsState().Visible
	if len(campaigns) == 0 {
		return m.renderEmpty("No campaigns yet. Press n to create one")
	}
	height := m.contentHeight()
	selected := clamp(m.selected[console.Ads], len(campaigns))
	listWidth, detailWidth := m.splitWidths()

	rows := m.renderRows(len(campaigns), selected, listWidth-2, height-2, m.theme.FocusBg,
		func(i int, bgColor string, isSelected bool) string {
			return m.formatCampaignRow(campaigns[i], listWidth-2, bgColor, isSelected)
		})
	list := m.renderTitledBox(fmt.Sprintf("Campaigns (%d)", len(campaigns)), rows, listWidth, height, true)
	if detailWidth == 0 {
		return list
	}
	detail := m.renderTitledBox("Campaign", m.renderCampaignDetail(campaigns[selected], detailWidth-4), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// formatCampaignRow formats "[Platform] Name  $budget  Status".
func (m Model) formatCampaignRow(c storefront.Campaign, width int, bgColor string, selected bool) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	text := styles.Text
	if selected {
		text = text.Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	platform := styles.StatusStyle(c.Platform).Render(padRight(titleCase(c.Platform), 9))
	status := styles.StatusStyle(c.Status).Render(titleCase(ternary(c.Status == "", "draft", c.Status)))

	fixed := lipgloss.Width(platform) + 1 + 14 + 1 + lipgloss.Width(status) + 1
	nameWidth := max(8, width-fixed)

	return platform + bg.Space() +
		bg.Column(c.Name, nameWidth, text) + bg.Space() +
		bg.Column(formatMoney(c.Budget, ""), 14, text) + bg.Space() +
		status
}

// renderCampaignDetail renders budgets, targeting and creative.
func (m Model) renderCampaignDetail(c storefront.Campaign, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	field := func(label, value string, style lipgloss.Style) string {
		if strings.TrimSpace(value) == "" {
			return bg.Column(label, 12, styles.MutedText) + bg.Render("-", styles.FaintText)
		}
		return bg.Column(label, 12, styles.MutedText) + bg.Render(truncate(value, width-13), style)
	}

	daily := ""
	if c.DailyBudget != nil {
		daily = formatMoney(*c.DailyBudget, "")
	}

	lines := []string{
		bg.Render(truncate(c.Name, width), styles.Text.Bold(true)),
		styles.StatusStyle(c.Platform).Render(titleCase(c.Platform)) + bg.Space() +
			styles.StatusStyle(c.Status).Render(titleCase(c.Status)),
		"",
		field("Budget", formatMoney(c.Budget, ""), styles.Text),
		field("Daily", daily, styles.Text),
		field("Product", c.ProductID, styles.Text),
		field("Audience", formatAudience(c.TargetAudience), styles.Text),
		field("Video", truncateMiddle(c.CreativeVideoURL, width-13), styles.InfoText),
		field("Created", c.CreatedAt, styles.Text),
		"",
		bg.Render("Caption", styles.AccentText.Bold(true)),
	}
	captionLines := wrapText(c.CreativeCaption, width)
	if len(captionLines) == 0 {
		lines = append(lines, bg.Render("No caption", styles.FaintText))
	}
	for _, line := range captionLines {
		lines = append(lines, bg.Render(line, styles.Text))
	}
	return strings.Join(lines, "\n")
}

// formatAudience renders "key: value" pairs in a stable order.
func formatAudience(audience map[string]any) string {
	if len(audience) == 0 {
		return ""
	}
	keys := make([]string, 0, len(audience))
	for k := range audience {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, audience[k]))
	}
	return strings.Join(parts, ", ")
}
