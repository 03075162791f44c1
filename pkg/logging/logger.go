// Package logging provides structured logging for the server.
//
// Stdout carries the protocol stream, so loggers write to stderr unless told
// otherwise. Child loggers created with WithFields share their parent's
// writer, formatter and level: a SetLevel on the root is seen by every
// request-scoped logger derived from it, and lines from concurrent requests
// never interleave.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
)

// Level represents the severity of a log message
type Level int

const (
	DebugLevel Level = iota - 1
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel

	// disabledLevel is above every level and silences a logger
	disabledLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level.
// The empty string means info.
func ParseLevel(name string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "":
		return InfoLevel, nil
	case "WARNING":
		return WarnLevel, nil
	}
	for level, levelName := range levelNames {
		if levelName == upper {
			return level, nil
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", name)
}

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal logs and exits the process with status 1
	Fatal(msg string, fields ...Field)

	WithFields(fields ...Field) Logger
	// WithContext attaches the request id carried by ctx
	WithContext(ctx context.Context) Logger
	// WithError attaches err and, for protocol errors, its code and the
	// method or capability it concerns
	WithError(err error) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Entry is one log line before formatting
type Entry struct {
	Level     Level
	Time      time.Time
	Message   string
	RequestID string
	Method    string
	Component string
	Fields    map[string]interface{}
}

// Formatter formats log entries
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

// sink is shared by a root logger and all of its children
type sink struct {
	mu        sync.Mutex
	out       io.Writer
	formatter Formatter
	level     atomic.Int32
	exit      func(code int)
}

func (s *sink) write(entry *Entry) {
	data, err := s.formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: format %q: %v\n", entry.Message, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(data); err != nil {
		fmt.Fprintf(os.Stderr, "logging: write: %v\n", err)
	}
}

type logger struct {
	sink   *sink
	fields []Field
}

// New creates a logger writing to out. A nil out means stderr and a nil
// formatter means plain text.
func New(out io.Writer, formatter Formatter) Logger {
	if out == nil {
		out = os.Stderr
	}
	if formatter == nil {
		formatter = NewTextFormatter()
	}
	s := &sink{out: out, formatter: formatter, exit: os.Exit}
	s.level.Store(int32(InfoLevel))
	return &logger{sink: s}
}

// NewFromOptions builds a logger from level and format names as they appear
// on the command line. Format is "text" or "json".
func NewFromOptions(out io.Writer, level, format string) (Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		formatter = NewTextFormatter()
	case "json":
		formatter = NewJSONFormatter()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	l := New(out, formatter)
	l.SetLevel(lvl)
	return l, nil
}

// Nop returns a logger that discards everything
func Nop() Logger {
	l := New(io.Discard, NewJSONFormatter())
	l.SetLevel(disabledLevel)
	return l
}

func (l *logger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *logger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *logger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *logger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields)
	l.sink.exit(1)
}

func (l *logger) WithFields(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{sink: l.sink, fields: merged}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.WithFields(RequestID(id))
	}
	return l
}

func (l *logger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	fields := []Field{ErrorField(err)}

	e, ok := mcperrors.As(err)
	if !ok {
		return l.WithFields(fields...)
	}
	fields = append(fields,
		Int("error_code", e.Code),
		String("error_name", mcperrors.CodeName(e.Code)),
		String("error_category", string(e.Category())),
	)
	if e.Method != "" {
		fields = append(fields, Method(e.Method))
	}
	if e.Name != "" {
		fields = append(fields, String("capability", e.Kind+":"+e.Name))
	}
	if e.Parameter != "" {
		fields = append(fields, String("parameter", e.Parameter))
	}
	if e.Transport != "" {
		fields = append(fields, String("transport", e.Transport), String("op", e.Op))
	}
	return l.WithFields(fields...)
}

func (l *logger) SetLevel(level Level) {
	l.sink.level.Store(int32(level))
}

func (l *logger) GetLevel() Level {
	return Level(l.sink.level.Load())
}

func (l *logger) log(level Level, msg string, fields []Field) {
	if level < l.GetLevel() {
		return
	}

	entry := &Entry{
		Level:   level,
		Time:    time.Now(),
		Message: msg,
		Fields:  make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for _, set := range [][]Field{l.fields, fields} {
		for _, f := range set {
			entry.Fields[f.Key] = redact(f.Key, f.Value)
		}
	}

	entry.RequestID = popString(entry.Fields, requestIDField)
	entry.Method = popString(entry.Fields, methodField)
	entry.Component = popString(entry.Fields, componentField)

	l.sink.write(entry)
}

// popString moves a string field out of the field map into the entry header
func popString(fields map[string]interface{}, key string) string {
	s, ok := fields[key].(string)
	if ok {
		delete(fields, key)
	}
	return s
}
