package ui

import (
	"strings"

	"github.com/five82/courier/internal/market"
)

func (m Model) renderWallet() string {
	snap := m.wallet
	if !snap.HasValue {
		return m.renderWaiting("wallet", snap.LastError)
	}
	styles := m.theme.Styles()
	w := snap.Value

	var b strings.Builder
	b.WriteString(styles.MutedText.Render("Balance"))
	b.WriteString("\n")
	b.WriteString(styles.SuccessText.Render(formatMoney(w.Balance, w.Currency)))
	b.WriteString("\n\n")

	if c := m.lastCredit; c != nil {
		b.WriteString(styles.MutedText.Render(padRight("Last credit", 14)))
		b.WriteString(styles.AccentText.Render("+" + formatMoney(market.Amount(c.event.Delta), c.currency)))
		b.WriteString(styles.MutedText.Render(" at " + c.at.Format("15:04:05")))
		b.WriteString("\n")
	}
	if w.RiderID != "" {
		b.WriteString(styles.MutedText.Render(padRight("Rider", 14)))
		b.WriteString(styles.Text.Render(w.RiderID))
		b.WriteString("\n")
	}
	if note := m.renderStaleNote(statusOf(snap)); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}
