package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/five82/courier/internal/stage"
)

// Flag is a progress flag that tolerates the loose encodings the backend
// emits: booleans, "true"/"1"/"yes" strings, non-zero numbers. Null and
// absent fields decode as false.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag(truthy(data))
	return nil
}

func truthy(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false
	}
	switch data[0] {
	case 't':
		return bytes.Equal(data, []byte("true"))
	case 'f':
		return false
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		return err == nil && n != 0
	}
}

// OrderSnapshot mirrors /api/orders/{id}/status.
type OrderSnapshot struct {
	OrderID       string    `json:"order_id"`
	OrderAccepted Flag      `json:"order_accepted"`
	ItemPicked    Flag      `json:"item_picked"`
	RiderEnRoute  Flag      `json:"rider_en_route"`
	ArrivingSoon  Flag      `json:"arriving_soon"`
	Completed     Flag      `json:"completed"`
	RiderName     string    `json:"rider_name"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

// Flags returns the progress flags in deriver form.
func (o OrderSnapshot) Flags() stage.Flags {
	return stage.Flags{
		OrderAccepted: bool(o.OrderAccepted),
		ItemPicked:    bool(o.ItemPicked),
		RiderEnRoute:  bool(o.RiderEnRoute),
		ArrivingSoon:  bool(o.ArrivingSoon),
		Completed:     bool(o.Completed),
	}
}

// Stage derives the delivery stage of the snapshot.
func (o OrderSnapshot) Stage() stage.Stage {
	return stage.Derive(o.Flags())
}

// Amount is a monetary value held as integer minor units. It decodes from a
// JSON number or numeric string in major units ("12.50" -> 1250); null and
// absent decode as zero.
type Amount int64

// ErrAmountRange is returned for amounts that do not fit in minor units.
var ErrAmountRange = errors.New("amount out of range")

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", raw, err)
	}
	minor := math.Round(v * 100)
	if math.IsNaN(minor) || minor >= math.MaxInt64 || minor <= math.MinInt64 {
		return fmt.Errorf("amount %q: %w", raw, ErrAmountRange)
	}
	*a = Amount(minor)
	return nil
}

// MarshalJSON encodes the amount as a JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// String formats the amount in major units with two decimals.
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// WalletSnapshot mirrors /api/riders/{id}/wallet.
type WalletSnapshot struct {
	RiderID  string `json:"rider_id"`
	Balance  Amount `json:"balance"`
	Currency string `json:"currency"`
}

// Presence is the live "counterparty online" field. Only JSON true or the
// exact strings "true"/"online" count as online; anything else, including an
// absent field, is offline.
type Presence bool

// UnmarshalJSON implements json.Unmarshaler.
func (p *Presence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*p = true
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = false
			return nil
		}
		*p = Presence(s == "true" || s == "online")
	default:
		*p = false
	}
	return nil
}

// Message is one chat message within a conversation.
type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	SentAt Timestamp `json:"sent_at"`
	FromMe bool      `json:"from_me"`
}

// Counterparty identifies the other side of a conversation.
type Counterparty struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Conversation describes one entry of the conversation list.
type Conversation struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"order_id"`
	Counterparty Counterparty `json:"counterparty"`
	CreatedAt    Timestamp    `json:"created_at"`
	Messages     []Message    `json:"messages"`
	Online       Presence     `json:"online"`
	Unread       int          `json:"unread"`
}

// LastMessage returns the most recent message by SentAt. Messages with equal
// timestamps resolve to the later one in the slice.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	best := 0
	bestAt := c.Messages[0].SentAt.Time()
	for i := 1; i < len(c.Messages); i++ {
		at := c.Messages[i].SentAt.Time()
		if !at.Before(bestAt) {
			best, bestAt = i, at
		}
	}
	return c.Messages[best], true
}

// ConversationList mirrors /api/users/{id}/conversations. The endpoint answers
// either with a bare array or with {"conversations": [...]}.
type ConversationList []Conversation

// UnmarshalJSON implements json.Unmarshaler.
func (l *ConversationList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []Conversation
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var wrapped struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Conversations
	return nil
}

// Clone returns a copy that shares no message slices with l.
func (l ConversationList) Clone() ConversationList {
	if len(l) == 0 {
		return nil
	}
	out := make(ConversationList, len(l))
	for i, c := range l {
		if len(c.Messages) > 0 {
			c.Messages = append([]Message(nil), c.Messages...)
		}
		out[i] = c
	}
	return out
}

// Timestamp decodes RFC 3339 strings, "2006-01-02 15:04:05" strings (UTC) and
// epoch milliseconds given as a number or string. Anything unparsable decodes
// as the zero time rather than failing the whole payload.
type Timestamp time.Time

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Time returns the wrapped time.
func (ts Timestamp) Time() time.Time {
	return time.Time(ts)
}

// IsZero reports whether the timestamp is unset or was unparsable.
func (ts Timestamp) IsZero() bool {
	return time.Time(ts).IsZero()
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*ts = Timestamp{}
			return nil
		}
		raw = s
	}
	*ts = Timestamp(parseTime(raw))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(ts).UTC().Format(time.RFC3339Nano))
}

const legacyTimestampLayout = "2006-01-02 15:04:05"

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
