package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one line of courier's JSON log.
type Entry struct {
	Time   time.Time
	Level  string
	Logger string
	Msg    string
	// Fields holds every key besides ts, level, logger, msg, caller and pid.
	Fields map[string]any
	// Raw is set instead of the parsed fields when the line isn't JSON.
	Raw string
}

var reserved = map[string]struct{}{
	"ts": {}, "level": {}, "logger": {}, "msg": {}, "caller": {}, "pid": {},
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines. maxLines <= 0 reads the whole file.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range lines {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Parse decodes one log line. Lines that aren't JSON objects come back with
// only Raw set.
func Parse(line string) Entry {
	line = strings.TrimSpace(line)
	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil || obj == nil {
		return Entry{Raw: line}
	}
	e := Entry{
		Level:  stringField(obj, "level"),
		Logger: stringField(obj, "logger"),
		Msg:    stringField(obj, "msg"),
	}
	if ts := stringField(obj, "ts"); ts != "" {
		e.Time = parseTime(ts)
	}
	for k, v := range obj {
		if _, skip := reserved[k]; skip {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[k] = v
	}
	return e
}

// Tail reads and parses the last n lines of the log at path.
func Tail(path string, n int) ([]Entry, error) {
	lines, err := Read(path, n)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		entries = append(entries, Parse(l))
	}
	return entries, nil
}

// FieldString renders the extra fields as key=value pairs sorted by key.
func (e Entry) FieldString() string {
	if len(e.Fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// zap's ISO8601 encoder writes millisecond precision with a numeric zone.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339Nano,
	time.RFC3339,
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
