package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/console"
	"github.com/five82/shopdeck/internal/storefront"
)

// renderHeader renders the status bar: logo, view tabs and the freshness of
// the visible view.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	current := m.console.Current()
	st := m.console.Status(current)

	parts := []string{bg.Render("shopdeck", styles.Logo)}
	parts = append(parts, m.renderTabs(current, compact, styles, bg))

	if st.Loading {
		parts = append(parts, bg.Render(m.spinner.View(), styles.AccentText))
	}

	if st.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 24
		}
		label := classifyConnectionError(st.LastError)
		detail := truncate(describeError(st.LastError), maxErr)
		if st.Offline {
			detail = "showing last data"
		}
		parts = append(parts,
			bg.Render(label, styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(detail, styles.DangerText))
	}

	if ts := formatTimestamp(st.LastUpdated, time.Now()); ts != "" {
		parts = append(parts, bg.Render(ts, styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderTabs renders the numbered view switcher with the current view lit.
func (m Model) renderTabs(current console.View, compact bool, styles Styles, bg BgStyle) string {
	tabs := make([]string, 0, len(console.Views()))
	for i, v := range console.Views() {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if compact && v != current {
			label = fmt.Sprintf("%d", i+1)
		}
		style := styles.MutedText
		if v == current {
			style = styles.AccentText.Bold(true)
		}
		tabs = append(tabs, bg.Render(label, style))
	}
	return bg.Join(tabs, " │ ")
}

// formatTimestamp formats the last update time with relative indicator.
func formatTimestamp(updated, now time.Time) string {
	if updated.IsZero() {
		return ""
	}

	since := now.Sub(updated)
	timeStr := updated.Format("15:04:05")

	switch {
	case since < time.Minute:
		timeStr += " (now)"
	case since < time.Hour:
		timeStr += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		timeStr += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}

	return timeStr
}

// classifyConnectionError returns a short label for a fetch failure.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	}
	switch storefront.KindOf(err) {
	case storefront.KindNetwork:
		return "OFFLINE"
	case storefront.KindDecode:
		return "BAD RESPONSE"
	case storefront.KindRejected:
		return "REJECTED"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar for the visible view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.console.Current() {
	case console.Orders:
		commands = []cmd{
			{"f", "Fulfill"},
			{"j/k", "Navigate"},
			{"R", "Refresh"},
		}
	case console.Products:
		commands = []cmd{
			{"a", "Add to store"},
			{"/", "Search"},
			{"esc", "Clear"},
			{"j/k", "Navigate"},
			{"R", "Rediscover"},
		}
	case console.Ads:
		commands = []cmd{
			{"n", "New campaign"},
			{"j/k", "Navigate"},
			{"R", "Refresh"},
		}
	case console.CustomerService:
		commands = []cmd{
			{"r", "Auto-respond"},
			{"j/k", "Navigate"},
			{"pgdn/pgup", "Scroll"},
			{"R", "Refresh"},
		}
	default:
		commands = []cmd{
			{"R", "Refresh"},
		}
	}
	commands = append(commands, cmd{"tab", "Next view"}, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Show active product search
	if m.console.Current() == console.Products {
		if filter := m.console.ProductFilter(); filter != "" && !m.searching {
			segments = append(segments, bg.Render("/"+truncate(filter, 18), styles.AccentText))
		}
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}
