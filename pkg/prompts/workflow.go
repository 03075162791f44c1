// Package prompts defines the guidance prompts served through prompts/get.
package prompts

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"strings"
	"text/template"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/protocol"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

var workflowTemplate = template.Must(template.ParseFS(templateFS, "templates/sdlc-full-workflow.md.tmpl"))

// ErrMissingArguments is returned when projectPath or task is absent
var ErrMissingArguments = errors.New("projectPath and task are required")

// Task types accepted by the workflow prompt
const (
	TypeFeature = "feature"
	TypeBugfix  = "bugfix"
)

// workflowData feeds the template
type workflowData struct {
	Title       string
	ProjectPath string
	Task        string
	BugFix      bool
}

// Workflow walks a feature or bug fix through the analyst, architect,
// developer, tester, reviewer and documentor personas.
type Workflow struct {
	logger logging.Logger
}

// NewWorkflow creates the sdlc-full-workflow prompt
func NewWorkflow(logger logging.Logger) *Workflow {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Workflow{logger: logger}
}

func (w *Workflow) Name() string { return "sdlc-full-workflow" }

func (w *Workflow) Description() string {
	return "Complete SDLC workflow from analysis through documentation for implementing a feature or fixing a bug"
}

func (w *Workflow) Arguments() []protocol.PromptArgument {
	return []protocol.PromptArgument{
		{Name: "projectPath", Description: "Path to the Maven project", Required: true},
		{Name: "task", Description: "Feature to implement or bug to fix", Required: true},
		{Name: "type", Description: "Task type: 'feature' or 'bugfix'", Required: false},
	}
}

// Render fills in the workflow for args. Any type other than bugfix renders
// the feature variant.
func (w *Workflow) Render(ctx context.Context, args map[string]interface{}) (string, error) {
	projectPath := stringArg(args, "projectPath")
	task := stringArg(args, "task")
	if projectPath == "" || task == "" {
		return "", ErrMissingArguments
	}

	data := workflowData{
		Title:       "Feature Implementation",
		ProjectPath: projectPath,
		Task:        task,
	}
	if strings.EqualFold(stringArg(args, "type"), TypeBugfix) {
		data.Title = "Bug Fix"
		data.BugFix = true
	}

	var buf bytes.Buffer
	if err := workflowTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	logging.FromContext(ctx, w.logger).Debug("Rendered workflow prompt",
		logging.Project(projectPath),
		logging.Bool("bugfix", data.BugFix))
	return buf.String(), nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}
