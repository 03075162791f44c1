package logging

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// TextFormatter writes one human-readable line per entry:
//
//	2026-01-02T15:04:05.000Z INFO  [req-1] <tools/call> server: Tool executed tool=scan-security duration=1.2s
type TextFormatter struct {
	// Colors wraps the level in ANSI colors; only useful on a terminal
	Colors        bool
	OmitTimestamp bool
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

var levelColors = map[Level]string{
	DebugLevel: "\033[90m",
	InfoLevel:  "\033[34m",
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
	FatalLevel: "\033[31m",
}

func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder

	if !f.OmitTimestamp {
		b.WriteString(entry.Time.UTC().Format(timeLayout))
		b.WriteByte(' ')
	}

	level := fmt.Sprintf("%-5s", entry.Level)
	if color, ok := levelColors[entry.Level]; ok && f.Colors {
		level = color + level + "\033[0m"
	}
	b.WriteString(level)

	if entry.RequestID != "" {
		b.WriteString(" [" + entry.RequestID + "]")
	}
	if entry.Method != "" {
		b.WriteString(" <" + entry.Method + ">")
	}
	b.WriteByte(' ')
	if entry.Component != "" {
		b.WriteString(entry.Component + ": ")
	}
	b.WriteString(entry.Message)

	for _, key := range sortedKeys(entry.Fields) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(textValue(entry.Fields[key]))
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func textValue(v interface{}) string {
	var s string
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case error:
		s = val.Error()
	case string:
		s = val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", val)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// JSONFormatter writes one JSON object per entry. Header values use the keys
// time, level, msg, request_id, method and component; fields follow under
// their own keys.
type JSONFormatter struct {
	OmitTimestamp bool
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	out := make(map[string]interface{}, len(entry.Fields)+6)
	for k, v := range entry.Fields {
		switch val := v.(type) {
		case error:
			out[k] = val.Error()
		case time.Duration:
			out[k+"_ms"] = val.Milliseconds()
		default:
			out[k] = v
		}
	}

	if !f.OmitTimestamp {
		out["time"] = entry.Time.UTC().Format(timeLayout)
	}
	out["level"] = strings.ToLower(entry.Level.String())
	out["msg"] = entry.Message
	setIfNotEmpty(out, requestIDField, entry.RequestID)
	setIfNotEmpty(out, methodField, entry.Method)
	setIfNotEmpty(out, componentField, entry.Component)

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal log entry: %w", err)
	}
	return append(data, '\n'), nil
}

func setIfNotEmpty(m map[string]interface{}, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
