package tools

import (
	"context"
	"time"

	"github.com/sdlc-tools/mcp-server/pkg/codegen"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

const (
	implementFeatureDescription = "Autonomously implements new features by analyzing codebase patterns, identifying " +
		"appropriate locations, generating code following project conventions, and creating tests. " +
		"Provides intelligent code generation based on feature description and existing architecture."
	fixBugDescription = "Analyzes bug descriptions and stack traces to locate, identify, and suggest fixes for bugs. " +
		"Can detect common bug patterns like NullPointerException, ArrayIndexOutOfBounds, " +
		"resource leaks, and logic errors. Generates regression tests to prevent recurrence."
)

type implementFeatureArgs struct {
	Path               string `json:"path" jsonschema_description:"Path to the Maven project"`
	FeatureDescription string `json:"featureDescription" jsonschema_description:"Natural language description of the feature to implement"`
	TargetModule       string `json:"targetModule,omitempty" jsonschema_description:"Optional: specific module to implement feature in"`
	TargetPackage      string `json:"targetPackage,omitempty" jsonschema_description:"Optional: specific package to implement feature in"`
	GenerateTests      *bool  `json:"generateTests,omitempty" jsonschema:"default=true"`
}

// FeatureResult is returned by implement-feature
type FeatureResult struct {
	Success bool                 `json:"success"`
	Results *codegen.FeaturePlan `json:"results"`
}

func (ts *Toolset) implementFeature(ctx context.Context, args implementFeatureArgs) (interface{}, error) {
	ts.log(ctx).Info("Implementing feature",
		logging.Project(args.Path),
		logging.String("feature", args.FeatureDescription),
	)

	plan, err := codegen.PlanFeature(ctx, codegen.FeatureRequest{
		ProjectPath:   args.Path,
		Description:   args.FeatureDescription,
		TargetModule:  args.TargetModule,
		TargetPackage: args.TargetPackage,
		GenerateTests: boolOr(args.GenerateTests, true),
	})
	if err != nil {
		return nil, err
	}
	plan.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return &FeatureResult{Success: true, Results: plan}, nil
}

type fixBugArgs struct {
	Path           string `json:"path" jsonschema_description:"Path to the Maven project"`
	BugDescription string `json:"bugDescription" jsonschema_description:"Description of the bug"`
	StackTrace     string `json:"stackTrace,omitempty" jsonschema_description:"Optional: stack trace if available"`
	AffectedFile   string `json:"affectedFile,omitempty" jsonschema_description:"Optional: specific file where bug occurs"`
	GenerateTest   *bool  `json:"generateTest,omitempty" jsonschema:"default=true"`
}

// BugFixResult is returned by fix-bug
type BugFixResult struct {
	Success bool                 `json:"success"`
	Results *codegen.BugAnalysis `json:"results"`
}

func (ts *Toolset) fixBug(ctx context.Context, args fixBugArgs) (interface{}, error) {
	ts.log(ctx).Info("Analyzing bug",
		logging.Project(args.Path),
		logging.String("bug", args.BugDescription),
	)

	analysis, err := codegen.AnalyzeBug(ctx, codegen.BugReport{
		ProjectPath:  args.Path,
		Description:  args.BugDescription,
		StackTrace:   args.StackTrace,
		AffectedFile: args.AffectedFile,
		GenerateTest: boolOr(args.GenerateTest, true),
	})
	if err != nil {
		return nil, err
	}
	analysis.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return &BugFixResult{Success: true, Results: analysis}, nil
}
