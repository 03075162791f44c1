// Package docs generates project documentation: a JavaDoc coverage report,
// a README from the Maven model, Markdown API docs from public classes and a
// changelog from Git history.
package docs

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sdlc-tools/mcp-server/pkg/scan"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("docs").
	Funcs(template.FuncMap{"lower": strings.ToLower}).
	ParseFS(templateFS, "templates/*.tmpl"))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// mainSources returns the .java files that live under a src/main/java tree
func mainSources(ctx context.Context, root string) ([]string, error) {
	files, err := scan.JavaFiles(ctx, root, scan.FileFilter{IncludeTests: true})
	if err != nil {
		return nil, err
	}
	var main []string
	for _, path := range files {
		if strings.Contains(filepath.ToSlash(path), "/src/main/java/") {
			main = append(main, path)
		}
	}
	return main, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
