package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/server"
)

func TestToolsetRegistrationOrder(t *testing.T) {
	var names []string
	for _, tool := range New(Dependencies{}).Tools() {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Description(), tool.Name())
	}
	assert.Equal(t, []string{
		"analyze-maven-project",
		"analyze-dependencies",
		"run-maven-command",
		"code-quality-check",
		"security-scan",
		"generate-documentation",
		"suggest-implementation",
		"implement-feature",
		"fix-bug",
		"generate-tests",
		"jira-search-issues",
		"jira-get-issue",
		"jira-create-issue",
		"confluence-search-pages",
		"confluence-get-page",
		"confluence-create-page",
	}, names)
}

func TestRegister(t *testing.T) {
	srv := server.New()
	ts := New(Dependencies{})
	require.NoError(t, ts.Register(srv))

	err := ts.Register(srv)
	assert.ErrorIs(t, err, server.ErrDuplicateCapability)
}

func TestInputSchemas(t *testing.T) {
	type schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}

	tests := []struct {
		tool       string
		required   []string
		properties []string
	}{
		{"analyze-maven-project", []string{"path"}, []string{"path"}},
		{"analyze-dependencies", []string{"path"}, []string{"path", "module", "scope", "checkUpdates"}},
		{"run-maven-command", []string{"path", "command"}, []string{"path", "command", "module"}},
		{"security-scan", []string{"path"}, []string{"path", "scanType", "severity", "includeRemediations", "excludePatterns"}},
		{"generate-documentation", []string{"path", "type"}, []string{"path", "type", "packageFilter", "maxCommits", "outputFile"}},
		{"implement-feature", []string{"path", "featureDescription"}, []string{"targetModule", "targetPackage", "generateTests"}},
		{"fix-bug", []string{"path", "bugDescription"}, []string{"stackTrace", "affectedFile", "generateTest"}},
		{"generate-tests", []string{"filePath"}, []string{"testFramework", "mockingLibrary", "includeParameterizedTests", "includeEdgeCases", "outputDirectory"}},
		{"jira-search-issues", []string{"jql"}, []string{"jiraUrl", "email", "apiToken", "jql", "maxResults"}},
		{"jira-create-issue", []string{"projectKey", "issueType", "summary"}, []string{"description"}},
		{"confluence-get-page", []string{"pageId"}, []string{"confluenceUrl", "email", "apiToken", "pageId", "expand"}},
		{"confluence-create-page", []string{"spaceKey", "title", "content"}, []string{"parentId"}},
	}

	tools := map[string]server.Tool{}
	for _, tool := range New(Dependencies{}).Tools() {
		tools[tool.Name()] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			var s schema
			require.NoError(t, json.Unmarshal(tools[tt.tool].InputSchema(), &s))
			assert.Equal(t, "object", s.Type)
			assert.ElementsMatch(t, tt.required, s.Required)
			for _, p := range tt.properties {
				assert.Contains(t, s.Properties, p)
			}
		})
	}
}

func TestMissingRequiredArguments(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		tool string
		args map[string]interface{}
		want string
	}{
		{"analyze-maven-project", map[string]interface{}{}, "path parameter is required"},
		{"run-maven-command", map[string]interface{}{"path": "/tmp"}, "command parameter is required"},
		{"suggest-implementation", map[string]interface{}{"path": "/tmp"}, "feature parameter is required"},
		{"generate-documentation", map[string]interface{}{"path": "/tmp"}, "type parameter is required"},
		{"implement-feature", map[string]interface{}{"path": "/tmp"}, "featureDescription parameter is required"},
		{"fix-bug", map[string]interface{}{"path": "/tmp"}, "bugDescription parameter is required"},
		{"generate-tests", map[string]interface{}{}, "filePath parameter is required"},
		{"jira-get-issue", map[string]interface{}{"jiraUrl": "https://x"}, "issueKey parameter is required"},
		{"confluence-create-page", map[string]interface{}{"spaceKey": "DEV", "title": "T"}, "content parameter is required"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			_, err := f.call(t, tt.tool, tt.args)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestInvalidArgumentType(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.call(t, "jira-search-issues", map[string]interface{}{"jql": "x", "maxResults": "many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}
