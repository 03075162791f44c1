// Package codegen plans code changes for a Maven project: unit test
// skeletons for a class, a scaffold for a new feature and a diagnosis of a
// reported bug. Generated Java is rendered from embedded templates.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"unicode"
	"unicode/utf8"
)

//go:embed templates/*.java.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("codegen").
	Funcs(template.FuncMap{
		"capitalize":   capitalize,
		"uncapitalize": uncapitalize,
	}).
	ParseFS(templateFS, "templates/*.java.tmpl"))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func uncapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// checkProject returns an error unless path exists
func checkProject(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("Project path does not exist: %s", path)
	}
	return nil
}

// resolve joins rel onto root unless it is already absolute
func resolve(root, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, rel)
}
