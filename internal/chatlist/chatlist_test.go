package chatlist

import (
	"reflect"
	"testing"
	"time"

	"github.com/five82/courier/internal/market"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func ts(offset time.Duration) market.Timestamp {
	return market.NewTimestamp(t0.Add(offset))
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestProject_MessagelessSortsByCreatedAt(t *testing.T) {
	convs := []market.Conversation{
		{ID: "empty", CreatedAt: ts(0)},
		{ID: "chatty", CreatedAt: ts(-time.Hour), Messages: []market.Message{{Text: "hi", SentAt: ts(time.Minute)}}},
	}
	got := ids(Project(convs, ""))
	want := []string{"chatty", "empty"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Project order = %v, want %v", got, want)
	}

	rows := Project(convs, "")
	if !rows[1].LastActivity.Equal(t0) {
		t.Fatalf("message-less LastActivity = %v, want created_at %v", rows[1].LastActivity, t0)
	}
}

func TestProject_CreatedAfterLatestMessage(t *testing.T) {
	c := market.Conversation{
		ID:        "c",
		CreatedAt: ts(2 * time.Hour),
		Messages:  []market.Message{{SentAt: ts(time.Hour)}},
	}
	if got := LastActivity(c); !got.Equal(t0.Add(2 * time.Hour)) {
		t.Fatalf("LastActivity = %v, want created_at", got)
	}
}

func TestProject_DescendingAndStable(t *testing.T) {
	convs := []market.Conversation{
		{ID: "a", CreatedAt: ts(time.Minute)},
		{ID: "b", CreatedAt: ts(3 * time.Minute)},
		{ID: "c", CreatedAt: ts(time.Minute)},
		{ID: "d", CreatedAt: ts(2 * time.Minute)},
	}
	got := ids(Project(convs, ""))
	want := []string{"b", "d", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Project order = %v, want %v", got, want)
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	convs := []market.Conversation{
		{ID: "old", CreatedAt: ts(0)},
		{ID: "new", CreatedAt: ts(time.Hour)},
	}
	_ = Project(convs, "")
	if convs[0].ID != "old" || convs[1].ID != "new" {
		t.Fatalf("input reordered: %v", []string{convs[0].ID, convs[1].ID})
	}
}

func TestFilter(t *testing.T) {
	convs := []market.Conversation{
		{ID: "1", CreatedAt: ts(3 * time.Minute), Counterparty: market.Counterparty{DisplayName: "Chidi Okafor"},
			Messages: []market.Message{{Text: "On my way", SentAt: ts(3 * time.Minute)}}},
		{ID: "2", CreatedAt: ts(2 * time.Minute), Counterparty: market.Counterparty{DisplayName: "Mama Put Kitchen"},
			Messages: []market.Message{{Text: "Your jollof is READY", SentAt: ts(2 * time.Minute)}}},
		{ID: "3", CreatedAt: ts(time.Minute), Counterparty: market.Counterparty{DisplayName: "Ada"}},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps all in order", "", []string{"1", "2", "3"}},
		{"blank query keeps all", "   ", []string{"1", "2", "3"}},
		{"name case-insensitive", "chidi", []string{"1"}},
		{"message case-insensitive", "ready", []string{"2"}},
		{"matches both fields", "a", []string{"1", "2", "3"}},
		{"no match", "zzz", []string{}},
		{"only last message counts", "jollof", []string{"2"}},
		{"trailing space is matched", "put ", []string{"2"}},
		{"trailing space excludes end of name", "ada ", []string{}},
		{"leading space is matched", " okafor", []string{"1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Project(convs, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Project(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_OnlyLastMessageText(t *testing.T) {
	c := market.Conversation{
		ID: "x",
		Messages: []market.Message{
			{Text: "secret pin 4411", SentAt: ts(0)},
			{Text: "thanks", SentAt: ts(time.Minute)},
		},
	}
	if got := Project([]market.Conversation{c}, "4411"); len(got) != 0 {
		t.Fatalf("Project matched an older message: %v", ids(got))
	}
}

func TestOnline(t *testing.T) {
	rows := Project([]market.Conversation{
		{ID: "on", Online: true},
		{ID: "off"},
	}, "")
	if OnlineCount(rows) != 1 {
		t.Fatalf("OnlineCount = %d, want 1", OnlineCount(rows))
	}
}

func TestRecency(t *testing.T) {
	now := t0.Add(48 * time.Hour)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-10 * time.Second), "now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-48 * time.Hour), "2d"},
	}
	for _, tt := range tests {
		if got := Recency(tt.at, now); got != tt.want {
			t.Fatalf("Recency(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}
