// Package evidence coerces loosely typed evidence bundles into a fixed shape.
// It never fails: anything it cannot read becomes an empty field
package evidence

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Field names one of the five evidence channels
type Field string

const (
	// UserSnippet is the user's latest message(s)
	UserSnippet Field = "userSnippet"
	// TodayLog is the agent's daily log
	TodayLog Field = "todayLog"
	// MemorySnippet is an excerpt of long-term memory
	MemorySnippet Field = "memorySnippet"
	// RecentSessionTranscript is the recent conversation transcript
	RecentSessionTranscript Field = "recentSessionTranscript"
	// RecentEvents is the ordered sequence of opaque event records
	RecentEvents Field = "recentEvents"
)

// ScanOrder is the fixed order in which fields are scanned and reported
var ScanOrder = []Field{UserSnippet, TodayLog, MemorySnippet, RecentSessionTranscript, RecentEvents}

// ParseField maps a camelCase or snake_case key to a Field
func ParseField(s string) (Field, bool) {
	f, ok := aliases[strings.TrimSpace(s)]
	return f, ok
}

var aliases = map[string]Field{
	"userSnippet":               UserSnippet,
	"user_snippet":              UserSnippet,
	"todayLog":                  TodayLog,
	"today_log":                 TodayLog,
	"memorySnippet":             MemorySnippet,
	"memory_snippet":            MemorySnippet,
	"recentSessionTranscript":   RecentSessionTranscript,
	"recent_session_transcript": RecentSessionTranscript,
	"recentEvents":              RecentEvents,
	"recent_events":             RecentEvents,
}

// Bundle is the normalized evidence for one engine call
type Bundle struct {
	UserSnippet             string `json:"userSnippet" yaml:"userSnippet"`
	TodayLog                string `json:"todayLog" yaml:"todayLog"`
	MemorySnippet           string `json:"memorySnippet" yaml:"memorySnippet"`
	RecentSessionTranscript string `json:"recentSessionTranscript" yaml:"recentSessionTranscript"`
	RecentEvents            []any  `json:"recentEvents" yaml:"recentEvents"`
}

// Normalize accepts nil, Bundle, *Bundle, map[string]any, map[string]string,
// []byte or json.RawMessage (a JSON object) and returns a fully populated Bundle
func Normalize(raw any) Bundle {
	var b Bundle
	switch v := raw.(type) {
	case nil:
	case Bundle:
		b = v
	case *Bundle:
		if v != nil {
			b = *v
		}
	case map[string]any:
		b = fromMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		b = fromMap(m)
	case json.RawMessage:
		b = fromJSON(v)
	case []byte:
		b = fromJSON(v)
	}
	if b.RecentEvents == nil {
		b.RecentEvents = []any{}
	}
	return b
}

func fromJSON(data []byte) Bundle {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Bundle{}
	}
	return fromMap(m)
}

func fromMap(m map[string]any) Bundle {
	var b Bundle
	for _, f := range ScanOrder {
		v, ok := lookup(m, f)
		if !ok {
			continue
		}
		switch f {
		case UserSnippet:
			b.UserSnippet = text(v)
		case TodayLog:
			b.TodayLog = text(v)
		case MemorySnippet:
			b.MemorySnippet = text(v)
		case RecentSessionTranscript:
			b.RecentSessionTranscript = text(v)
		case RecentEvents:
			b.RecentEvents = events(v)
		}
	}
	return b
}

// lookup prefers the camelCase key over its snake_case alias
func lookup(m map[string]any, f Field) (any, bool) {
	if v, ok := m[string(f)]; ok {
		return v, true
	}
	for k, alias := range aliases {
		if alias == f && k != string(f) {
			if v, ok := m[k]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// text keeps strings verbatim; any other type degrades to ""
func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func events(v any) []any {
	switch xs := v.(type) {
	case []any:
		return xs
	case []string:
		out := make([]any, len(xs))
		for i, s := range xs {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(xs))
		for i, m := range xs {
			out[i] = m
		}
		return out
	}
	return []any{}
}

// Text renders a field as scannable text. Events render one per line
func (b Bundle) Text(f Field) string {
	switch f {
	case UserSnippet:
		return b.UserSnippet
	case TodayLog:
		return b.TodayLog
	case MemorySnippet:
		return b.MemorySnippet
	case RecentSessionTranscript:
		return b.RecentSessionTranscript
	case RecentEvents:
		return renderEvents(b.RecentEvents)
	}
	return ""
}

// IsEmpty reports whether every field is empty
func (b Bundle) IsEmpty() bool {
	return b.UserSnippet == "" && b.TodayLog == "" && b.MemorySnippet == "" &&
		b.RecentSessionTranscript == "" && len(b.RecentEvents) == 0
}

func renderEvents(xs []any) string {
	if len(xs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, ev := range xs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(renderEvent(ev))
	}
	return sb.String()
}

func renderEvent(ev any) string {
	switch v := ev.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Sprint(ev)
	}
	return string(raw)
}
