package ui

import (
	"fmt"
	"strings"

	"github.com/five82/courier/internal/chatlist"
)

func (m Model) renderChats(width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	snap := m.chats
	if !snap.HasValue {
		b.WriteString(m.renderWaiting("conversation", snap.LastError))
		return b.String()
	}

	all := chatlist.Project(snap.Value, "")
	rows := m.chatRows()
	b.WriteString(styles.MutedText.Render(fmt.Sprintf("%d conversations, %d online",
		len(all), chatlist.OnlineCount(all))))
	b.WriteString("\n\n")

	if len(rows) == 0 {
		if len(all) == 0 {
			b.WriteString(styles.FaintText.Render("No conversations yet"))
		} else {
			b.WriteString(styles.FaintText.Render("No conversations match " + fmt.Sprintf("%q", m.search.Value())))
		}
		return b.String()
	}

	now := m.now()
	previewWidth := maxInt(width-LayoutNameWidth-12, LayoutMinPreviewWidth)
	for i, r := range rows {
		b.WriteString(m.renderChatRow(r, i == m.chatCursor, previewWidth, width, chatlist.Recency(r.LastActivity, now)))
		b.WriteString("\n")
	}

	if note := m.renderStaleNote(statusOf(snap)); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}

func (m Model) renderChatRow(r chatlist.Row, selected bool, previewWidth, width int, age string) string {
	styles := m.theme.Styles()

	dot := styles.FaintText.Render("○")
	if r.Online {
		dot = styles.SuccessText.Render("●")
	}

	name := r.Counterparty
	if name == "" {
		name = "Unknown"
	}
	if role := titleCase(r.Role); role != "" {
		name += " (" + role + ")"
	}

	unread := ""
	if r.Unread > 0 {
		unread = styles.AccentText.Render(fmt.Sprintf(" [%d]", r.Unread))
	}

	preview := styles.Text.Render(truncate(r.Preview, previewWidth))
	if r.Preview == "" {
		preview = styles.FaintText.Render("no messages")
	}

	line := dot + " " +
		styles.Text.Render(padRight(truncate(name, LayoutNameWidth), LayoutNameWidth)) + " " +
		styles.MutedText.Render(padLeft(age, 4)) + "  " +
		preview + unread

	if selected {
		return styles.Selected.Width(width).Render(line)
	}
	return line
}
