package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/maven"
)

func TestAnalyzeMavenProjectCachesAnalysis(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)

	out, err := f.call(t, "analyze-maven-project", map[string]interface{}{"path": root})
	require.NoError(t, err)

	result, ok := out.(*AnalyzeProjectResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, "orders", result.Analysis.ArtifactID)
	assert.Equal(t, "multi-module", result.Analysis.ProjectType)
	assert.Equal(t, 1, result.Analysis.ModuleCount)
	assert.Equal(t, "cache://analysis/"+root, result.CacheURI)

	entry, found, err := f.cache.Get(context.Background(), root)
	require.NoError(t, err)
	require.True(t, found)

	var cached maven.ProjectAnalysis
	require.NoError(t, json.Unmarshal(entry.Data, &cached))
	assert.Equal(t, "orders", cached.ArtifactID)
}

func TestAnalyzeMavenProjectWatchesProject(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())
	w, err := cache.NewWatcher(c, nil)
	require.NoError(t, err)
	defer w.Close()

	ts := New(Dependencies{Cache: c, Watcher: w, Maven: &recordingExecutor{}})
	root := newProject(t)

	_, err = ts.analyzeProject(context.Background(), analyzeProjectArgs{Path: root})
	require.NoError(t, err)
	assert.True(t, w.Watching(root))
}

func TestAnalyzeMavenProjectMissingPOM(t *testing.T) {
	f := newFixture(t, nil)
	dir := t.TempDir()

	_, err := f.call(t, "analyze-maven-project", map[string]interface{}{"path": dir})
	assert.EqualError(t, err, "No pom.xml found in: "+dir)

	_, found, err := f.cache.Get(context.Background(), dir)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAnalyzeDependencies(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)

	out, err := f.call(t, "analyze-dependencies", map[string]interface{}{
		"path":  root,
		"scope": "compile",
	})
	require.NoError(t, err)

	result, ok := out.(*DependenciesResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.DirectDependencies.Count)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "success")
	assert.Contains(t, fields, "directDependencies")
	assert.Contains(t, fields, "summary")

	_, err = f.call(t, "analyze-dependencies", map[string]interface{}{"path": root, "scope": "system"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scope: system")
}

func TestRunMavenCommand(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)

	out, err := f.call(t, "run-maven-command", map[string]interface{}{
		"path":    root,
		"command": "clean test",
		"module":  "api",
	})
	require.NoError(t, err)

	result, ok := out.(*maven.CommandResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, "Command executed successfully", result.Message)

	require.Len(t, f.executor.calls, 1)
	call := f.executor.calls[0]
	assert.Equal(t, filepath.Join(root, "pom.xml"), call.POM)
	assert.Equal(t, []string{"clean", "test"}, call.Goals)
	assert.Equal(t, []string{"api"}, call.Projects)
}

func TestRunMavenCommandRejectsUnlisted(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.call(t, "run-maven-command", map[string]interface{}{
		"path":    t.TempDir(),
		"command": "deploy",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Command not allowed: deploy")

	_, err = f.call(t, "run-maven-command", map[string]interface{}{
		"path":    t.TempDir(),
		"command": "compile exec:exec -Dexec.executable=sh",
	})
	assert.ErrorContains(t, err, "Command not allowed: compile exec:exec")
	assert.Empty(t, f.executor.calls)
}

func TestRunMavenCommandFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.executor.results["compile"] = &maven.InvocationResult{ExitCode: 1, Output: "[ERROR] COMPILATION ERROR"}

	out, err := f.call(t, "run-maven-command", map[string]interface{}{"path": t.TempDir(), "command": "compile"})
	require.NoError(t, err)

	result := out.(*maven.CommandResult)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, "Command failed with exit code: 1", result.Message)
}

func TestSuggestImplementation(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)
	args := map[string]interface{}{"path": root, "feature": "Add order export"}

	t.Run("without cached analysis", func(t *testing.T) {
		out, err := f.call(t, "suggest-implementation", args)
		require.NoError(t, err)

		result := out.(*SuggestionResult)
		assert.True(t, result.Success)
		assert.Nil(t, result.ProjectContext)
		assert.Equal(t, baseSuggestions, result.Suggestions)
		assert.Equal(t, baseNextSteps, result.NextSteps)
		assert.Contains(t, result.Message, "Run analyze-maven-project first")
	})

	t.Run("with cached analysis", func(t *testing.T) {
		_, err := f.call(t, "analyze-maven-project", map[string]interface{}{"path": root})
		require.NoError(t, err)

		out, err := f.call(t, "suggest-implementation", map[string]interface{}{
			"path":           root,
			"feature":        "Add order export",
			"analysisReport": "docs/analysis.md",
		})
		require.NoError(t, err)

		result := out.(*SuggestionResult)
		require.NotNil(t, result.ProjectContext)
		assert.Equal(t, "orders", result.ProjectContext.ArtifactID)
		assert.Equal(t, []string{"api"}, result.ProjectContext.Modules)
		assert.False(t, result.ProjectContext.IsStale)
		assert.Contains(t, result.Suggestions, "Start from the findings in the analysis report at docs/analysis.md")
		assert.Contains(t, result.Suggestions, "Mirror the existing test layout under src/test/java (1 test files)")
		assert.Greater(t, len(result.Suggestions), len(baseSuggestions))
	})
}

func TestProjectSuggestionsWithoutTests(t *testing.T) {
	suggestions := projectSuggestions(&maven.ProjectAnalysis{
		ProjectType: "single-module",
		Plugins:     []string{"spring-boot-maven-plugin"},
	})
	assert.Equal(t, []string{
		"The project has no src/test/java; add a test source tree alongside the change",
		"Follow Spring Boot conventions: constructor injection and configuration properties",
	}, suggestions)
}
