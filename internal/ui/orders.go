package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/dispatch"
	"github.com/five82/shopdeck/internal/storefront"
)

// orderLabel prefers the human order number over the internal id.
func orderLabel(o storefront.Order) string {
	if strings.TrimSpace(o.OrderNumber) != "" {
		return "#" + strings.TrimPrefix(o.OrderNumber, "#")
	}
	return "#" + o.ID
}

// formatItems renders "2x Lamp, 1x Mug".
func formatItems(items []storefront.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Title))
	}
	return strings.Join(parts, ", ")
}

// formatAddress flattens the loosely typed shipping address.
func formatAddress(addr map[string]any) string {
	if len(addr) == 0 {
		return ""
	}
	var parts []string
	for _, k := range []string{"name", "address1", "line1", "address2", "line2", "city", "state", "province", "zip", "postal_code", "country"} {
		if v, ok := addr[k]; ok {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if len(parts) == 0 {
		keys := make([]string, 0, len(addr))
		for k := range addr {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprint(addr[k]))
		}
	}
	return strings.Join(parts, ", ")
}

// renderOrders renders pending orders with a detail pane for the selection.
func (m Model) renderOrders() string {
	orders := m.console.OrdersState().Visible
	if len(orders) == 0 {
		return m.renderEmpty("No pending orders")
	}
	height := m.contentHeight()
	selected := clamp(m.selected[console.Orders], len(orders))

	listWidth, detailWidth := m.splitWidths()
	rows := m.renderRows(len(orders), selected, listWidth-2, height-2, m.theme.FocusBg,
		func(i int, bgColor string, isSelected bool) string {
			return m.formatOrderRow(orders[i], listWidth-2, bgColor, isSelected)
		})
	title := fmt.Sprintf("Pending Orders (%d)", len(orders))
	list := m.renderTitledBox(title, rows, listWidth, height, true)
	if detailWidth == 0 {
		return list
	}

	detail := m.renderTitledBox("Order "+orderLabel(orders[selected]),
		m.renderOrderDetail(orders[selected], detailWidth-4), detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// formatOrderRow formats "#1001 Customer  2x Item  $12.00 Status".
func (m Model) formatOrderRow(o storefront.Order, width int, bgColor string, selected bool) string {
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	text := styles.Text
	muted := styles.MutedText
	if selected {
		text = text.Foreground(lipgloss.Color(m.theme.SelectionText))
		muted = text
	}

	status := strings.ToLower(o.FulfillmentStatus)
	if m.console.InFlight(dispatch.KindFulfill, o.ID) {
		status = "fulfilling…"
	}
	badge := styles.StatusStyle(o.FulfillmentStatus).Render(titleCase(status))

	total := formatMoney(o.Total, o.Currency)
	fixed := 10 + 1 + 14 + 1 + lipgloss.Width(badge) + 1
	customerWidth := max(8, (width-fixed)/2)
	itemsWidth := max(0, width-fixed-customerWidth-1)

	row := bg.Column(orderLabel(o), 10, styles.AccentText) + bg.Space() +
		bg.Column(displayName(o.CustomerName, o.CustomerEmail), customerWidth, text) + bg.Space()
	if itemsWidth > 4 {
		row += bg.Column(formatItems(o.Items), itemsWidth, muted) + bg.Space()
	}
	return row + bg.Column(total, 14, text) + bg.Space() + badge
}

// renderOrderDetail renders every field of the selected order.
func (m Model) renderOrderDetail(o storefront.Order, width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	bg := NewBgStyle(m.theme.SurfaceAlt)

	field := func(label, value string, style lipgloss.Style) string {
		if strings.TrimSpace(value) == "" {
			value = "-"
			style = styles.FaintText
		}
		return bg.Column(label, 12, styles.MutedText) + bg.Render(truncate(value, width-13), style)
	}

	lines := []string{
		field("Customer", o.CustomerName, styles.Text),
		field("Email", truncateMiddle(o.CustomerEmail, width-13), styles.Text),
		field("Total", formatMoney(o.Total, o.Currency), styles.Text.Bold(true)),
		field("Status", titleCase(o.Status), styles.Text),
		bg.Column("Fulfillment", 12, styles.MutedText) + styles.StatusStyle(o.FulfillmentStatus).Render(titleCase(o.FulfillmentStatus)),
		field("Tracking", o.TrackingNumber, styles.InfoText),
		field("Ship to", formatAddress(o.ShippingAddress), styles.Text),
		field("Placed", formatDate(o.ParsedCreatedAt(), o.CreatedAt), styles.Text),
		"",
		bg.Render("Items", styles.AccentText.Bold(true)),
	}
	for _, item := range o.Items {
		lines = append(lines, bg.Render(fmt.Sprintf("%3dx", item.Quantity), styles.MutedText)+bg.Space()+
			bg.Render(truncate(item.Title, width-5), styles.Text))
	}
	if len(o.Items) == 0 {
		lines = append(lines, bg.Render("No line items", styles.FaintText))
	}

	lines = append(lines, "")
	if o.Fulfillable() {
		lines = append(lines, bg.Render("Press f to send to fulfillment", styles.WarningText))
	}
	return strings.Join(lines, "\n")
}
