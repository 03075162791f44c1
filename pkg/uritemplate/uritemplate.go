// Package uritemplate matches concrete URIs against templates such as
// "cache://analysis/{projectPath}".
//
// Each {name} placeholder captures one or more characters of any kind,
// slashes included. Everything else in the template is literal. A match
// must cover the whole URI.
package uritemplate

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{([^{}]*)\}`)

// Template is a compiled URI template
type Template struct {
	raw     string
	pattern *regexp.Regexp
	names   []string
}

// Compile parses a template. Placeholder names must be non-empty and
// unique within the template.
func Compile(raw string) (*Template, error) {
	var (
		expr  strings.Builder
		names []string
		last  int
	)
	seen := make(map[string]bool)

	expr.WriteString("^")
	for _, loc := range placeholder.FindAllStringSubmatchIndex(raw, -1) {
		name := strings.TrimSpace(raw[loc[2]:loc[3]])
		if name == "" {
			return nil, fmt.Errorf("uritemplate: empty placeholder in %q", raw)
		}
		if seen[name] {
			return nil, fmt.Errorf("uritemplate: duplicate placeholder %q in %q", name, raw)
		}
		seen[name] = true

		expr.WriteString(regexp.QuoteMeta(raw[last:loc[0]]))
		expr.WriteString("(.+)")
		names = append(names, name)
		last = loc[1]
	}
	expr.WriteString(regexp.QuoteMeta(raw[last:]))
	expr.WriteString("$")

	pattern, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("uritemplate: compile %q: %w", raw, err)
	}

	return &Template{raw: raw, pattern: pattern, names: names}, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(raw string) *Template {
	t, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template as written
func (t *Template) String() string {
	return t.raw
}

// IsLiteral reports whether the template has no placeholders
func (t *Template) IsLiteral() bool {
	return len(t.names) == 0
}

// Match reports whether uri matches the template and, if so, returns the
// captured placeholder values. A literal template that matches returns an
// empty, non-nil map.
func (t *Template) Match(uri string) (map[string]string, bool) {
	groups := t.pattern.FindStringSubmatch(uri)
	if groups == nil {
		return nil, false
	}

	params := make(map[string]string, len(t.names))
	for i, name := range t.names {
		params[name] = groups[i+1]
	}
	return params, true
}

// Expand substitutes params into the template. Missing names are an error.
func (t *Template) Expand(params map[string]string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(t.raw, func(m string) string {
		name := strings.TrimSpace(m[1 : len(m)-1])
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("uritemplate: missing values for %s", strings.Join(missing, ", "))
	}
	return out, nil
}
