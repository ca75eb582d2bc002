package ui

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numbers = message.NewPrinter(language.English)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a string by removing characters from the middle,
// preserving both the beginning and end. Used for emails and URLs where the
// domain matters as much as the prefix.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// titleCase converts an underscore-separated string to title case.
func titleCase(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '_' || r == ' ' })
	for i, part := range parts {
		lower := strings.ToLower(part)
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// formatMoney renders an amount with thousands separators. USD and unknown
// currencies use a dollar sign; anything else is prefixed with its code.
func formatMoney(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if currency == "" || currency == "USD" {
		return sign + "$" + numbers.Sprintf("%.2f", amount)
	}
	return sign + currency + " " + numbers.Sprintf("%.2f", amount)
}

// formatPercent renders a value that is already a percentage.
func formatPercent(value float64, decimals int) string {
	if decimals <= 0 {
		return numbers.Sprintf("%.0f%%", value)
	}
	if decimals == 1 {
		return numbers.Sprintf("%.1f%%", value)
	}
	return numbers.Sprintf("%.2f%%", value)
}

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return numbers.Sprintf("%d", n)
}

// formatDate renders a parsed API timestamp in local time, or the raw value
// when it could not be parsed.
func formatDate(t time.Time, raw string) string {
	if t.IsZero() {
		return strings.TrimSpace(raw)
	}
	return t.Local().Format("2006-01-02 15:04")
}

// ternary returns a if cond is true, otherwise b.
func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// clamp limits idx to [0, n-1], returning 0 for empty lists.
func clamp(idx, n int) int {
	if n <= 0 || idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
