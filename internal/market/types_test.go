package market

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/five82/courier/internal/stage"
)

func TestOrderSnapshot_TolerantFlags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want stage.Flags
	}{
		{"empty object", `{}`, stage.Flags{}},
		{"booleans", `{"order_accepted":true,"item_picked":true}`, stage.Flags{OrderAccepted: true, ItemPicked: true}},
		{"strings", `{"order_accepted":"TRUE","item_picked":"0","rider_en_route":"yes"}`, stage.Flags{OrderAccepted: true, RiderEnRoute: true}},
		{"numbers", `{"completed":1,"arriving_soon":0}`, stage.Flags{Completed: true}},
		{"nulls", `{"order_accepted":null,"completed":false}`, stage.Flags{}},
		{"garbage string", `{"completed":"maybe"}`, stage.Flags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snap OrderSnapshot
			if err := json.Unmarshal([]byte(tt.body), &snap); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if got := snap.Flags(); got != tt.want {
				t.Fatalf("Flags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOrderSnapshot_CompletedWithoutAcceptedIsDelivered(t *testing.T) {
	var snap OrderSnapshot
	if err := json.Unmarshal([]byte(`{"completed":true,"order_accepted":false}`), &snap); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if snap.Stage() != stage.Delivered {
		t.Fatalf("Stage() = %v, want Delivered", snap.Stage())
	}
}

func TestPresence(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"online":true}`, true},
		{`{"online":"true"}`, true},
		{`{"online":"online"}`, true},
		{`{"online":"TRUE"}`, false},
		{`{"online":1}`, false},
		{`{"online":false}`, false},
		{`{"online":null}`, false},
		{`{}`, false},
	}
	for _, tt := range tests {
		var c Conversation
		if err := json.Unmarshal([]byte(tt.body), &c); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", tt.body, err)
		}
		if bool(c.Online) != tt.want {
			t.Fatalf("Unmarshal(%s).Online = %v, want %v", tt.body, c.Online, tt.want)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		body string
		want Amount
	}{
		{`{"balance":12.5}`, 1250},
		{`{"balance":"1000"}`, 100000},
		{`{"balance":"  "}`, 0},
		{`{"balance":null}`, 0},
		{`{}`, 0},
		{`{"balance":0.1}`, 10},
	}
	for _, tt := range tests {
		var w WalletSnapshot
		if err := json.Unmarshal([]byte(tt.body), &w); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", tt.body, err)
		}
		if w.Balance != tt.want {
			t.Fatalf("Unmarshal(%s).Balance = %d, want %d", tt.body, w.Balance, tt.want)
		}
	}

	var w WalletSnapshot
	if err := json.Unmarshal([]byte(`{"balance":"abc"}`), &w); err == nil {
		t.Fatalf("Unmarshal with non-numeric balance returned nil error")
	}

	for _, body := range []string{`{"balance":1e300}`, `{"balance":"-1e300"}`, `{"balance":"NaN"}`, `{"balance":92233720368547758.08}`} {
		var w WalletSnapshot
		if err := json.Unmarshal([]byte(body), &w); !errors.Is(err, ErrAmountRange) {
			t.Fatalf("Unmarshal(%s) error = %v, want ErrAmountRange", body, err)
		}
	}
}

func TestAmount_StringAndMarshal(t *testing.T) {
	if got := Amount(150000).String(); got != "1500.00" {
		t.Fatalf("String() = %q, want 1500.00", got)
	}
	if got := Amount(-5).String(); got != "-0.05" {
		t.Fatalf("String() = %q, want -0.05", got)
	}
	data, err := json.Marshal(WalletSnapshot{Balance: 1234})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	var back WalletSnapshot
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if back.Balance != 1234 {
		t.Fatalf("Balance after round trip = %d, want 1234", back.Balance)
	}
}

func TestTimestampLayouts(t *testing.T) {
	tests := []struct {
		body string
		want time.Time
	}{
		{`"2025-12-13T10:11:12Z"`, time.Date(2025, 12, 13, 10, 11, 12, 0, time.UTC)},
		{`"2025-12-13 10:11:12"`, time.Date(2025, 12, 13, 10, 11, 12, 0, time.UTC)},
		{`1765620672000`, time.UnixMilli(1765620672000).UTC()},
		{`"1765620672000"`, time.UnixMilli(1765620672000).UTC()},
	}
	for _, tt := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tt.body), &ts); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", tt.body, err)
		}
		if !ts.Time().Equal(tt.want) {
			t.Fatalf("Unmarshal(%s) = %v, want %v", tt.body, ts.Time(), tt.want)
		}
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"not a time"`), &ts); err != nil {
		t.Fatalf("Unmarshal garbage returned error: %v", err)
	}
	if !ts.IsZero() {
		t.Fatalf("garbage timestamp = %v, want zero", ts.Time())
	}
}

func TestConversationList_AcceptsBothShapes(t *testing.T) {
	for _, body := range []string{
		`[{"id":"a"},{"id":"b"}]`,
		`{"conversations":[{"id":"a"},{"id":"b"}]}`,
	} {
		var list ConversationList
		if err := json.Unmarshal([]byte(body), &list); err != nil {
			t.Fatalf("Unmarshal(%s) returned error: %v", body, err)
		}
		if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
			t.Fatalf("Unmarshal(%s) = %+v, want ids a,b", body, list)
		}
	}
}

func TestConversation_LastMessage(t *testing.T) {
	at := func(min int) Timestamp {
		return NewTimestamp(time.Date(2025, 1, 1, 12, min, 0, 0, time.UTC))
	}
	c := Conversation{Messages: []Message{
		{Text: "middle", SentAt: at(5)},
		{Text: "newest", SentAt: at(9)},
		{Text: "oldest", SentAt: at(1)},
	}}
	msg, ok := c.LastMessage()
	if !ok || msg.Text != "newest" {
		t.Fatalf("LastMessage() = %+v, %v; want newest", msg, ok)
	}

	if _, ok := (Conversation{}).LastMessage(); ok {
		t.Fatalf("LastMessage() on empty conversation returned ok")
	}
}

func TestConversationList_Clone(t *testing.T) {
	orig := ConversationList{{ID: "c1", Messages: []Message{{ID: "m1", Text: "hi"}}}}
	dup := orig.Clone()
	dup[0].Messages[0].Text = "changed"
	dup[0].ID = "other"
	if orig[0].Messages[0].Text != "hi" || orig[0].ID != "c1" {
		t.Fatalf("Clone shares data with the original: %+v", orig[0])
	}
	if ConversationList(nil).Clone() != nil {
		t.Fatal("Clone of empty list should be nil")
	}
}
