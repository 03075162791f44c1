package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/maven"
	"github.com/sdlc-tools/mcp-server/pkg/resources"
)

const (
	analyzeProjectDescription = "Analyzes a Maven multi-module project structure, including modules, dependencies, " +
		"and configuration. Useful for understanding project organization before making changes."
	analyzeDependenciesDescription = "Performs comprehensive dependency analysis including dependency tree, version conflicts, " +
		"transitive dependencies, unused dependencies and update suggestions. " +
		"Essential for understanding and managing project dependencies before implementing features."
	runCommandDescription = "Executes Maven commands safely. Supports common Maven goals like clean, compile, " +
		"test, package, and analysis commands. Use for building, testing, and analyzing projects."
	suggestDescription = "Analyzes the codebase and suggests implementation approaches for new features or bug fixes " +
		"based on existing patterns, architecture, and best practices. Useful for Architect and Developer personas."
)

type analyzeProjectArgs struct {
	Path string `json:"path" jsonschema_description:"Path to the Maven project root directory"`
}

// AnalyzeProjectResult is returned by analyze-maven-project
type AnalyzeProjectResult struct {
	Success  bool                   `json:"success"`
	Analysis *maven.ProjectAnalysis `json:"analysis"`
	// CacheURI reads the analysis back through resources/read
	CacheURI string `json:"cacheUri,omitempty"`
}

func (ts *Toolset) analyzeProject(ctx context.Context, args analyzeProjectArgs) (interface{}, error) {
	logger := ts.log(ctx).WithFields(logging.Project(args.Path))
	logger.Info("Analyzing Maven project")

	analysis, err := maven.AnalyzeProject(args.Path)
	if err != nil {
		return nil, err
	}

	result := &AnalyzeProjectResult{Success: true, Analysis: analysis}
	if ts.cache != nil {
		if err := ts.cache.Put(ctx, args.Path, analysis); err != nil {
			logger.WithError(err).Warn("Failed to cache analysis")
		} else {
			result.CacheURI = resources.URIFor(args.Path)
		}
	}
	if ts.watcher != nil {
		if err := ts.watcher.Watch(args.Path); err != nil {
			logger.WithError(err).Warn("Failed to watch project")
		}
	}

	return result, nil
}

type analyzeDependenciesArgs struct {
	Path         string `json:"path" jsonschema_description:"Path to the Maven project root directory"`
	Module       string `json:"module,omitempty" jsonschema_description:"Optional: specific module to analyze"`
	Scope        string `json:"scope,omitempty" jsonschema:"enum=all,enum=compile,enum=test,enum=runtime,enum=provided,default=all"`
	CheckUpdates bool   `json:"checkUpdates,omitempty" jsonschema_description:"Flag dependencies whose versions look dated"`
}

// DependenciesResult is returned by analyze-dependencies
type DependenciesResult struct {
	Success bool `json:"success"`
	*maven.DependencyReport
}

func (ts *Toolset) analyzeDependencies(ctx context.Context, args analyzeDependenciesArgs) (interface{}, error) {
	ts.log(ctx).Info("Analyzing dependencies",
		logging.Project(args.Path),
		logging.String("scope", args.Scope),
	)

	report, err := ts.analyzer.Analyze(ctx, maven.DependencyOptions{
		Path:         args.Path,
		Module:       args.Module,
		Scope:        args.Scope,
		CheckUpdates: args.CheckUpdates,
	})
	if err != nil {
		return nil, err
	}
	return &DependenciesResult{Success: true, DependencyReport: report}, nil
}

type runCommandArgs struct {
	Path    string `json:"path" jsonschema_description:"Path to the Maven project root directory"`
	Command string `json:"command" jsonschema_description:"Maven goals to run, e.g. 'clean install' or 'dependency:tree'"`
	Module  string `json:"module,omitempty" jsonschema_description:"Optional: run only for this module and the modules it needs"`
}

func (ts *Toolset) runCommand(ctx context.Context, args runCommandArgs) (interface{}, error) {
	ts.log(ctx).Info("Running Maven command",
		logging.Project(args.Path),
		logging.String("command", args.Command),
	)
	return maven.RunCommand(ctx, ts.maven, args.Path, args.Command, args.Module)
}

type suggestArgs struct {
	Path           string `json:"path" jsonschema_description:"Path to the Maven project"`
	Feature        string `json:"feature" jsonschema_description:"Description of the feature or bug fix"`
	AnalysisReport string `json:"analysisReport,omitempty" jsonschema_description:"Optional: path to analysis report from Analyst persona"`
}

// ProjectContext summarises a cached analysis
type ProjectContext struct {
	ArtifactID   string    `json:"artifactId"`
	ProjectType  string    `json:"projectType"`
	Modules      []string  `json:"modules,omitempty"`
	Dependencies int       `json:"dependencyCount"`
	CachedAt     time.Time `json:"cachedAt"`
	IsStale      bool      `json:"isStale"`
}

// SuggestionResult is returned by suggest-implementation
type SuggestionResult struct {
	Success        bool            `json:"success"`
	Feature        string          `json:"feature"`
	ProjectPath    string          `json:"projectPath"`
	Message        string          `json:"message"`
	ProjectContext *ProjectContext `json:"projectContext,omitempty"`
	Suggestions    []string        `json:"suggestions"`
	NextSteps      []string        `json:"nextSteps"`
}

var baseSuggestions = []string{
	"Analyze existing similar features in the codebase",
	"Follow the architecture patterns found in the project",
	"Use the Architect persona (.github/mcp/personas/02-architect.md) for design guidance",
	"Use the Developer persona (.github/mcp/personas/03-developer.md) for implementation guidance",
}

var baseNextSteps = []string{
	"Create Analysis Report using Analyst persona",
	"Design solution using Architect persona",
	"Implement using Developer persona",
	"Test using Tester persona",
}

func (ts *Toolset) suggestImplementation(ctx context.Context, args suggestArgs) (interface{}, error) {
	ts.log(ctx).Info("Suggesting implementation",
		logging.Project(args.Path),
		logging.String("feature", args.Feature),
	)

	result := &SuggestionResult{
		Success:     true,
		Feature:     args.Feature,
		ProjectPath: args.Path,
		Suggestions: append([]string{}, baseSuggestions...),
		NextSteps:   append([]string{}, baseNextSteps...),
	}
	if args.AnalysisReport != "" {
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("Start from the findings in the analysis report at %s", args.AnalysisReport))
	}

	analysis, projectCtx := ts.cachedAnalysis(ctx, args.Path)
	if analysis == nil {
		result.Message = "No cached analysis found. Run analyze-maven-project first for project-specific suggestions."
		return result, nil
	}

	result.Message = "Suggestions tailored from the cached project analysis"
	result.ProjectContext = projectCtx
	result.Suggestions = append(result.Suggestions, projectSuggestions(analysis)...)
	if projectCtx.IsStale {
		result.NextSteps = append([]string{"Re-run analyze-maven-project; the cached analysis is stale"}, result.NextSteps...)
	}
	return result, nil
}

func (ts *Toolset) cachedAnalysis(ctx context.Context, path string) (*maven.ProjectAnalysis, *ProjectContext) {
	if ts.cache == nil {
		return nil, nil
	}
	entry, ok, err := ts.cache.Get(ctx, path)
	if err != nil {
		ts.log(ctx).WithError(err).Warn("Failed to read analysis cache")
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	var analysis maven.ProjectAnalysis
	if err := json.Unmarshal(entry.Data, &analysis); err != nil {
		ts.log(ctx).WithError(err).Warn("Cached analysis is unreadable")
		return nil, nil
	}

	pc := &ProjectContext{
		ArtifactID:   analysis.ArtifactID,
		ProjectType:  analysis.ProjectType,
		Dependencies: analysis.DependencyCount,
		CachedAt:     entry.CachedAt,
		IsStale:      entry.IsStale(ts.cache.Now(), ts.cache.MaxAge()),
	}
	for _, m := range analysis.Modules {
		pc.Modules = append(pc.Modules, m.Name)
	}
	return &analysis, pc
}

func projectSuggestions(a *maven.ProjectAnalysis) []string {
	var out []string
	if a.IsMultiModule() && len(a.Modules) > 0 {
		names := make([]string, 0, len(a.Modules))
		for _, m := range a.Modules {
			names = append(names, m.Name)
		}
		out = append(out, fmt.Sprintf("Decide which of the %d modules (%s) owns the change and keep cross-module dependencies one-directional",
			len(names), strings.Join(names, ", ")))
	}
	if a.SourceStructure.HasTestJava {
		out = append(out, fmt.Sprintf("Mirror the existing test layout under src/test/java (%d test files)", a.SourceStructure.TestJavaFiles))
	} else {
		out = append(out, "The project has no src/test/java; add a test source tree alongside the change")
	}
	for _, plugin := range a.Plugins {
		if strings.Contains(plugin, "spring-boot") {
			out = append(out, "Follow Spring Boot conventions: constructor injection and configuration properties")
			break
		}
	}
	return out
}
