// Package chatlist projects a polled conversation list into display order.
package chatlist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/five82/courier/internal/market"
)

// Row is one display-ready conversation.
type Row struct {
	ID           string
	Counterparty string
	Role         string
	Preview      string
	LastActivity time.Time
	Online       bool
	Unread       int
}

// LastActivity is the later of the newest message timestamp and the creation
// time, so a conversation without messages still sorts by when it was opened.
func LastActivity(c market.Conversation) time.Time {
	latest := c.CreatedAt.Time()
	if msg, ok := c.LastMessage(); ok {
		if at := msg.SentAt.Time(); at.After(latest) {
			latest = at
		}
	}
	return latest
}

// Online reports whether the counterparty is present. Absent presence is
// offline.
func Online(c market.Conversation) bool {
	return bool(c.Online)
}

// Project returns rows sorted by descending last activity and filtered by
// query. Ties keep the order of the input. The input is not modified.
func Project(convs []market.Conversation, query string) []Row {
	rows := make([]Row, 0, len(convs))
	for _, c := range convs {
		rows = append(rows, toRow(c))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastActivity.After(rows[j].LastActivity)
	})
	return Filter(rows, query)
}

// Filter keeps rows whose counterparty name or last message text contains
// query, ignoring case. Surrounding spaces in query are part of the match. An
// empty or blank query returns rows unchanged.
func Filter(rows []Row, query string) []Row {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(fold.String(r.Counterparty), needle) ||
			strings.Contains(fold.String(r.Preview), needle) {
			out = append(out, r)
		}
	}
	return out
}

// OnlineCount returns how many rows have a present counterparty.
func OnlineCount(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Online {
			n++
		}
	}
	return n
}

func toRow(c market.Conversation) Row {
	row := Row{
		ID:           c.ID,
		Counterparty: strings.TrimSpace(c.Counterparty.DisplayName),
		Role:         c.Counterparty.Role,
		LastActivity: LastActivity(c),
		Online:       Online(c),
		Unread:       c.Unread,
	}
	if msg, ok := c.LastMessage(); ok {
		row.Preview = msg.Text
	}
	return row
}

// Recency formats the age of t relative to now for list display.
func Recency(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
