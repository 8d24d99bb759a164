package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/courier/internal/stage"
)

func (m Model) renderTracking(width int) string {
	snap := m.order
	if !snap.HasValue {
		return m.renderWaiting("order", snap.LastError)
	}
	styles := m.theme.Styles()
	o := snap.Value
	current := o.Stage()

	orderID := o.OrderID
	if orderID == "" {
		orderID = m.orderID
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Order " + orderID))
	b.WriteString("  ")
	b.WriteString(styles.StageStyle(current).Render(current.String()))
	b.WriteString("\n\n")
	b.WriteString(m.renderSteps(current, width))
	b.WriteString("\n\n")

	if o.RiderName != "" {
		b.WriteString(styles.MutedText.Render(padRight("Rider", 10)))
		b.WriteString(styles.Text.Render(o.RiderName))
		b.WriteString("\n")
	}
	if !o.UpdatedAt.IsZero() {
		b.WriteString(styles.MutedText.Render(padRight("Reported", 10)))
		b.WriteString(styles.Text.Render(o.UpdatedAt.Time().Format("15:04:05")))
		b.WriteString("\n")
	}
	if note := m.renderStaleNote(statusOf(snap)); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}

// renderSteps draws the five-stage progression. Narrow terminals get one
// step per line.
func (m Model) renderSteps(current stage.Stage, width int) string {
	styles := m.theme.Styles()
	parts := make([]string, 0, stage.Count)
	for _, step := range stage.Steps(current) {
		marker := "○"
		style := styles.FaintText
		switch {
		case step.Current:
			marker = "●"
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.StageColors[step.Stage])).
				Bold(true)
		case step.Reached:
			marker = "●"
			style = styles.Text
		}
		parts = append(parts, style.Render(marker+" "+step.Label))
	}
	if width < LayoutCompactWidth {
		return strings.Join(parts, "\n")
	}
	return strings.Join(parts, styles.FaintText.Render(" ── "))
}
