package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/courier/internal/logtail"
)

// logHeaderHeight is the title line plus a blank line above the viewport.
const logHeaderHeight = 2

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Log) || key.Matches(msg, m.keys.Quit) {
		m.showLog = false
		return m, nil
	}
	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// resizeLog fits the log viewport to the terminal and re-renders its lines.
func (m *Model) resizeLog() {
	m.logView.Width = maxInt(m.width-2, 1)
	m.logView.Height = maxInt(m.height-logHeaderHeight, 1)
	m.logView.SetContent(m.renderLogLines(m.logView.Width))
}

// renderLog renders the log overlay, newest entries last.
func (m Model) renderLog() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Recent log"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render(m.logFile))
	b.WriteString("\n\n")
	b.WriteString(m.logView.View())

	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) renderLogLines(width int) string {
	styles := m.theme.Styles()
	switch {
	case m.logErr != nil:
		return styles.DangerText.Render("Could not read log: " + m.logErr.Error())
	case len(m.logEntries) == 0:
		return styles.MutedText.Render("No log entries yet")
	}
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.renderLogEntry(e, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogEntry(e logtail.Entry, width int) string {
	styles := m.theme.Styles()
	if e.Msg == "" && e.Raw != "" {
		return styles.MutedText.Render(truncate(e.Raw, width))
	}

	levelStyle := styles.InfoText
	switch strings.ToLower(e.Level) {
	case "debug":
		levelStyle = styles.FaintText
	case "warn":
		levelStyle = styles.WarningText
	case "error", "dpanic", "panic", "fatal":
		levelStyle = styles.DangerText
	}

	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Format("15:04:05")
	}
	head := styles.FaintText.Render(ts) + " " +
		levelStyle.Render(padRight(strings.ToUpper(e.Level), 5)) + " " +
		styles.AccentText.Render(padRight(truncate(e.Logger, 16), 16)) + " " +
		styles.Text.Render(e.Msg)

	used := len(ts) + 1 + 5 + 1 + 16 + 1 + len([]rune(e.Msg))
	if fields := e.FieldString(); fields != "" && used+2 < width {
		head += "  " + styles.MutedText.Render(truncate(fields, width-used-2))
	}
	return head
}
