package ui

import "testing"

func TestNextThemeCycles(t *testing.T) {
	name := ThemeNames()[0]
	seen := map[string]bool{}
	for range ThemeNames() {
		seen[name] = true
		name = NextTheme(name)
	}
	if name != ThemeNames()[0] {
		t.Fatalf("cycle ended on %q, want %q", name, ThemeNames()[0])
	}
	if len(seen) != len(ThemeNames()) {
		t.Fatalf("visited %d themes, want %d", len(seen), len(ThemeNames()))
	}
	if got := NextTheme("missing"); got != ThemeNames()[0] {
		t.Fatalf("NextTheme(missing) = %q", got)
	}
}

func TestGetThemeFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("does-not-exist").Name; got != "Nightfox" {
		t.Fatalf("GetTheme fallback = %q, want Nightfox", got)
	}
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate) = %q", got)
	}
}

func TestThemesShareStatusKeys(t *testing.T) {
	base := GetTheme("Nightfox").StatusColors
	for _, name := range ThemeNames() {
		theme := GetTheme(name)
		if len(theme.StatusColors) != len(base) {
			t.Errorf("%s has %d status colors, want %d", name, len(theme.StatusColors), len(base))
		}
		for key := range base {
			if theme.StatusColors[key] == "" {
				t.Errorf("%s missing status color %q", name, key)
			}
		}
		if theme.ChartSales == "" || theme.ChartProfit == "" {
			t.Errorf("%s missing chart colors", name)
		}
	}
}

func TestStatusStyleNormalizesKey(t *testing.T) {
	theme := GetTheme("Nightfox")
	styles := theme.Styles()

	got := styles.StatusStyle("  Fulfilled ").GetBackground()
	want := styles.StatusStyle("fulfilled").GetBackground()
	if got != want {
		t.Fatalf("StatusStyle did not normalize case and spacing")
	}

	unknown := styles.StatusStyle("teleported").GetBackground()
	muted := styles.StatusStyle("another-unknown").GetBackground()
	if unknown != muted {
		t.Fatalf("unknown statuses should share the muted fallback")
	}
}
