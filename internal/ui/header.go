package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/courier/internal/state"
)

// status is the freshness summary shown in the header for the active screen.
type status struct {
	hasValue    bool
	offline     bool
	stale       bool
	lastSuccess time.Time
	lastErr     error
}

func statusOf[T any](s state.Snapshot[T]) status {
	return status{
		hasValue:    s.HasValue,
		offline:     s.IsOffline(),
		stale:       s.Stale(),
		lastSuccess: s.LastSuccess,
		lastErr:     s.LastError,
	}
}

func (m Model) activeStatus() status {
	switch m.active {
	case TabWallet:
		return statusOf(m.wallet)
	case TabChats:
		return statusOf(m.chats)
	default:
		return statusOf(m.order)
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	bodyHeight := maxInt(m.height-chromeHeight, 1)
	b.WriteString(lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		Padding(0, 1).
		Render(m.renderContent()))
	b.WriteString("\n")

	b.WriteString(m.renderToast())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderContent() string {
	width := maxInt(m.width-2, 1)
	switch m.active {
	case TabWallet:
		return m.renderWallet()
	case TabChats:
		return m.renderChats(width)
	default:
		return m.renderTracking(width)
	}
}

// renderHeader renders the status bar: logo, order and freshness of the
// active screen.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	sep := styles.Text.Render("  ")

	parts := []string{styles.Logo.Render("courier")}
	if m.orderID != "" {
		parts = append(parts, styles.MutedText.Render("order "+m.orderID))
	}
	parts = append(parts, m.renderStatus(styles)...)

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) renderStatus(styles Styles) []string {
	st := m.activeStatus()
	var parts []string

	if m.screens[m.active].Polling() {
		parts = append(parts, styles.SuccessText.Render("LIVE"))
	} else {
		parts = append(parts, styles.MutedText.Render("PAUSED"))
	}

	switch {
	case st.offline:
		parts = append(parts, styles.DangerText.Render("OFFLINE"))
	case st.stale:
		parts = append(parts, styles.WarningText.Render("STALE"))
	}

	if !st.lastSuccess.IsZero() {
		parts = append(parts, styles.FaintText.Render("updated "+st.lastSuccess.Format("15:04:05")))
	}
	return parts
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	parts := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := fmt.Sprintf(" %d %s ", t+1, t)
		if t == m.active {
			parts = append(parts, styles.Selected.Bold(true).Render(label))
			continue
		}
		parts = append(parts, styles.MutedText.Render(label))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderToast() string {
	if m.toast.text == "" {
		return ""
	}
	styles := m.theme.Styles()
	style := styles.InfoText
	switch m.toast.kind {
	case toastSuccess:
		style = styles.SuccessText
	case toastError:
		style = styles.DangerText
	}
	return " " + style.Render(truncate(m.toast.text, maxInt(m.width-2, 1)))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.promptOrder {
		return styles.Footer.Width(m.width).Render(m.orderInput.View())
	}
	return styles.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderWaiting is shown before a screen's first successful fetch.
func (m Model) renderWaiting(what string, lastErr error) string {
	styles := m.theme.Styles()
	if lastErr != nil {
		return styles.DangerText.Render("Could not load "+what+": ") + styles.Text.Render(lastErr.Error())
	}
	if !m.screens[m.active].Polling() {
		return styles.MutedText.Render("Paused. Focus the terminal to resume updates.")
	}
	return styles.MutedText.Render("Waiting for the first " + what + " update...")
}

// renderStaleNote explains that the data shown predates the last failure.
func (m Model) renderStaleNote(st status) string {
	if !st.stale {
		return ""
	}
	styles := m.theme.Styles()
	return styles.WarningText.Render("Showing last known data: ") + styles.MutedText.Render(st.lastErr.Error())
}
