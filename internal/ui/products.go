package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/dispatch"
	"github.com/five82/shopdeck/internal/storefront"
)

func marginLabel(p storefront.Product) string {
	if p.HighMargin() {
		return "High Margin"
	}
	return "Good Margin"
}

// renderProducts renders discovered products, the search line and a detail
// pane for the selection.
func (m Model) renderProducts() string {
	st := m.console.ProductsState()
	height := m.contentHeight()

	searchLine := m.renderSearchLine(len(st.Visible), len(st.Snapshot))
	listHeight := height - lipgloss.Height(searchLine)

	if len(st.Visible) == 0 {
		msg := "No products discovered"
		if len(st.Snapshot) > 0 {
			msg = fmt.Sprintf("No products match %q", m.console.ProductFilter())
		}
		empty := lipgloss.Place(m.width, listHeight, lipgloss.Center, lipgloss.Center, m.theme.Styles().MutedText.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, searchLine, empty)
	}

	products := st.Visible
	selected := clamp(m.selected[console.Products], len(products))
	listWidth, detailWidth := m.splitWidths()

	rows := m.renderRows(len(products), selected, listWidth-2, listHeight-2, m.theme.FocusBg,
		func(i int, bgColor string, isSelected bool) string {
			return m.formatProductRow(products[i], listWidth-2, bgColor, isSelected)
		})
	list := m.renderTitledBox(fmt.Sprintf("Products (%d)", len(products)), rows, listWidth, listHeight, true)
	if detailWidth > 0 {
		detail := m.renderTitledBox("Details", m.renderProductDetail(products[selected], detailWidth-4), detailWidth, listHeight, false)
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
	}
	return lipgloss.JoinVertical(lipgloss.Left, searchLine, list)
}

// renderSearchLine shows the search input while editing, or the active
// filter and match count.
func (m Model) renderSearchLine(visible, total int) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var content string
	switch {
	case m.searching:
		content = m.search.View() + bg.Spaces(2) + bg.Render("enter: keep  esc: clear", styles.FaintText)
	case m.console.ProductFilter() != "":
		content = bg.Render("/"+m.console.ProductFilter(), styles.AccentText) + bg.Spaces(2) +
			bg.Render(fmt.Sprintf("%d of %d", visible, total), styles.MutedText)
	default:
		content = bg.Render("Press / to search by title", styles.FaintText)
	}
	return bg.FillLine(content, m.width)
}

// formatProductRow formats "Title  $price  margin%  badge".
func (m Model) formatProductRow(p storefront.Product, width int, bgColor string, selected bool) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	text := styles.Text
	if selected {
		text = text.Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	label := marginLabel(p)
	if m.console.InFlight(dispatch.KindAddProduct, p.Key()) {
		label = "Adding…"
	}
	badge := styles.StatusStyle(marginLabel(p)).Render(label)

	fixed := 12 + 1 + 8 + 1 + lipgloss.Width(badge) + 1
	titleWidth := max(8, width-fixed)

	marginStyle := styles.InfoText
	if p.HighMargin() {
		marginStyle = styles.SuccessText
	}
	return bg.Column(p.Title, titleWidth, text) + bg.Space() +
		bg.Column(formatMoney(p.Price, p.Currency), 12, text) + bg.Space() +
		bg.Column(formatPercent(p.Margin*100, 1), 8, marginStyle) + bg.Space() +
		badge
}

// renderProductDetail renders pricing and supplier details.
func (m Model) renderProductDetail(p storefront.Product, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	field := func(label, value string, style lipgloss.Style) string {
		if strings.TrimSpace(value) == "" {
			return bg.Column(label, 10, styles.MutedText) + bg.Render("-", styles.FaintText)
		}
		return bg.Column(label, 10, styles.MutedText) + bg.Render(truncate(value, width-11), style)
	}

	lines := []string{
		bg.Render(truncate(p.Title, width), styles.Text.Bold(true)),
		styles.StatusStyle(marginLabel(p)).Render(marginLabel(p)),
		"",
		field("Price", formatMoney(p.Price, p.Currency), styles.Text),
		field("Cost", formatMoney(p.Cost, p.Currency), styles.Text),
		field("Margin", formatPercent(p.Margin*100, 1), styles.SuccessText),
		field("Profit", formatMoney(p.Profit, p.Currency), styles.SuccessText),
		field("Category", p.Category, styles.Text),
		field("Supplier", p.SupplierName, styles.Text),
		field("Link", truncateMiddle(p.SupplierURL, width-11), styles.InfoText),
		"",
	}
	for _, line := range wrapText(p.Description, width) {
		lines = append(lines, bg.Render(line, styles.MutedText))
	}
	lines = append(lines, "", bg.Render("Press a to add to store", styles.WarningText))
	return strings.Join(lines, "\n")
}

// wrapText breaks text into lines of at most width runes on word boundaries.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || width <= 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
