package logging

import (
	"strings"
	"time"
)

// Keys lifted out of the field map into the entry header
const (
	requestIDField = "request_id"
	methodField    = "method"
	componentField = "component"
)

// Redacted replaces the value of any field whose key names a secret
const Redacted = "[REDACTED]"

// Field is a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration fields render as key_ms in JSON output
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

func Time(key string, value time.Time) Field { return Field{Key: key, Value: value} }

func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// ErrorField records err under "error"
func ErrorField(err error) Field { return Field{Key: "error", Value: err} }

// RequestID tags a line with the id of the request being handled
func RequestID(id string) Field { return String(requestIDField, id) }

// Method tags a line with a JSON-RPC method name
func Method(name string) Field { return String(methodField, name) }

// Component tags a line with the subsystem that wrote it
func Component(name string) Field { return String(componentField, name) }

// Project tags a line with the Maven project it concerns
func Project(path string) Field { return String("project", path) }

// Tool tags a line with a tool name
func Tool(name string) Field { return String("tool", name) }

// secretKeys are matched against field keys with case, '_' and '-' ignored
var secretKeys = []string{"token", "password", "secret", "authorization", "credentials"}

func isSecretKey(key string) bool {
	k := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
	for _, s := range secretKeys {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	return false
}

// redact hides secret values, including those nested one map deep such as
// tool arguments
func redact(key string, value interface{}) interface{} {
	if isSecretKey(key) {
		return Redacted
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	var clean map[string]interface{}
	for k := range m {
		if isSecretKey(k) {
			clean = make(map[string]interface{}, len(m))
			break
		}
	}
	if clean == nil {
		return value
	}
	for k, v := range m {
		if isSecretKey(k) {
			v = Redacted
		}
		clean[k] = v
	}
	return clean
}
