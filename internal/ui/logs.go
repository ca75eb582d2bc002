package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shopdeck/internal/logtail"
)

const logTailLines = 300

// logModal shows the tail of shopdeck's own log file.
type logModal struct {
	path    string
	theme   Theme
	entries []logtail.Entry
	err     error
	width   int
	vp      viewport.Model
}

func newLogModal(path string, theme Theme, width, height int) logModal {
	modalWidth := max(40, min(width-4, 140))
	l := logModal{
		path:  path,
		theme: theme,
		width: modalWidth,
		vp:    viewport.New(modalWidth-4, max(3, height-12)),
	}
	return l.reload()
}

func (l logModal) reload() logModal {
	l.entries, l.err = logtail.Tail(l.path, logTailLines)
	l.vp.SetContent(l.render())
	l.vp.GotoBottom()
	return l
}

// Update scrolls the log. R rereads the file; Esc or L closes.
func (l logModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Escape), key.Matches(keyMsg, keys.Logs):
		return l, nil, true
	case key.Matches(keyMsg, keys.Refresh):
		return l.reload(), nil, false
	case key.Matches(keyMsg, keys.Up):
		l.vp.ScrollUp(1)
	case key.Matches(keyMsg, keys.Down):
		l.vp.ScrollDown(1)
	case key.Matches(keyMsg, keys.PageUp):
		l.vp.HalfPageUp()
	case key.Matches(keyMsg, keys.PageDown):
		l.vp.HalfPageDown()
	case key.Matches(keyMsg, keys.Top):
		l.vp.GotoTop()
	case key.Matches(keyMsg, keys.Bottom):
		l.vp.GotoBottom()
	}
	return l, nil, false
}

func (l logModal) render() string {
	styles := l.theme.Styles()
	if l.err != nil {
		return styles.DangerText.Render("Could not read log: " + l.err.Error())
	}
	if len(l.entries) == 0 {
		return styles.FaintText.Render("Nothing logged yet")
	}

	width := l.vp.Width
	lines := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Level == "" {
			lines = append(lines, styles.FaintText.Render(truncate(e.Raw, width)))
			continue
		}
		level := l.levelStyle(e.Level).Render(padRight(strings.ToUpper(e.Level), 5))
		line := styles.FaintText.Render(shortTime(e.Time)) + " " + level + " "
		if e.Logger != "" {
			line += styles.AccentText.Render("["+e.Logger+"]") + " "
		}
		rest := e.Message
		if e.Fields != "" {
			rest += "  " + e.Fields
		}
		line += styles.Text.Render(truncate(rest, max(10, width-lipgloss.Width(line))))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (l logModal) levelStyle(level string) lipgloss.Style {
	styles := l.theme.Styles()
	switch level {
	case "debug":
		return styles.FaintText
	case "info":
		return styles.InfoText.Bold(true)
	case "warn":
		return styles.WarningText.Bold(true)
	default:
		return styles.DangerText.Bold(true)
	}
}

// shortTime keeps the clock portion of an ISO timestamp.
func shortTime(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 && len(ts) >= i+9 {
		return ts[i+1 : i+9]
	}
	return ts
}

// View renders the log as a centered modal.
func (l logModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Log"))
	b.WriteString(" ")
	b.WriteString(styles.MutedText.Render(truncateMiddle(l.path, l.width-10)))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", l.width-4)))
	b.WriteString("\n")
	b.WriteString(l.vp.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("j/k: Scroll  •  R: Reload  •  Esc: Close"))

	return placeModal(theme, b.String(), l.width, width, height)
}
