package codegen

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"github.com/sdlc-tools/mcp-server/pkg/javasrc"
	"github.com/sdlc-tools/mcp-server/pkg/scan"
)

const (
	maxPatternFiles  = 50
	maxClassNameSize = 20
)

// knownSuffixes are the class name suffixes recognized as project
// conventions, in the order they are preferred
var knownSuffixes = []string{"Service", "Controller", "Repository", "Impl", "Tool", "Util", "Helper"}

var springStereotypes = []string{"Service", "Controller", "Repository", "Component"}

var commonWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "for": true, "of": true,
	"in": true, "on": true, "at": true, "by": true, "with": true,
}

// FeatureRequest describes a feature to scaffold
type FeatureRequest struct {
	ProjectPath   string
	Description   string
	TargetModule  string
	TargetPackage string
	GenerateTests bool
}

// CodePatterns are the conventions detected in existing sources
type CodePatterns struct {
	Message             string   `json:"message,omitempty"`
	CommonSuffixes      []string `json:"commonSuffixes"`
	UsesInterfaces      bool     `json:"usesInterfaces"`
	UsesAbstractClasses bool     `json:"usesAbstractClasses"`
	UsesSpring          bool     `json:"usesSpring"`
	UsesBuilderPattern  bool     `json:"usesBuilderPattern"`
	FilesAnalyzed       int      `json:"filesAnalyzed"`
}

type Location struct {
	Module      string `json:"module"`
	PackageName string `json:"packageName"`
	ClassName   string `json:"className"`
	SourceFile  string `json:"sourceFile"`
	TestFile    string `json:"testFile"`
}

type PlanStep struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	File        string `json:"file,omitempty"`
	Description string `json:"description"`
}

type CodeTemplate struct {
	Type        string `json:"type"`
	File        string `json:"file"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

type FeatureSummary struct {
	FilesToCreate       int      `json:"filesToCreate"`
	TestFilesToCreate   int      `json:"testFilesToCreate"`
	EstimatedComplexity string   `json:"estimatedComplexity"`
	Recommendations     []string `json:"recommendations"`
}

// FeaturePlan is the result of PlanFeature
type FeaturePlan struct {
	ProjectPath         string         `json:"projectPath"`
	FeatureDescription  string         `json:"featureDescription"`
	Timestamp           string         `json:"timestamp"`
	DetectedPatterns    CodePatterns   `json:"detectedPatterns"`
	RecommendedLocation Location       `json:"recommendedLocation"`
	ImplementationPlan  []PlanStep     `json:"implementationPlan"`
	CodeTemplates       []CodeTemplate `json:"codeTemplates"`
	TestTemplates       []CodeTemplate `json:"testTemplates,omitempty"`
	Summary             FeatureSummary `json:"summary"`
}

// PlanFeature picks a location and class name for a new feature following
// the conventions of the project and drafts its class and test.
func PlanFeature(ctx context.Context, req FeatureRequest) (*FeaturePlan, error) {
	if err := checkProject(req.ProjectPath); err != nil {
		return nil, err
	}

	patterns, err := DetectPatterns(ctx, req.ProjectPath)
	if err != nil {
		return nil, err
	}

	loc := Location{
		Module:      req.TargetModule,
		PackageName: req.TargetPackage,
		ClassName:   InferClassName(req.Description, patterns.CommonSuffixes),
	}
	if loc.Module == "" {
		loc.Module = inferModule(req.Description)
	}
	if loc.PackageName == "" {
		loc.PackageName = inferPackage(req.Description)
	}
	dir := strings.ReplaceAll(loc.PackageName, ".", "/")
	loc.SourceFile = "src/main/java/" + dir + "/" + loc.ClassName + ".java"
	loc.TestFile = "src/test/java/" + dir + "/" + loc.ClassName + "Test.java"

	plan := &FeaturePlan{
		ProjectPath:         req.ProjectPath,
		FeatureDescription:  req.Description,
		DetectedPatterns:    *patterns,
		RecommendedLocation: loc,
		ImplementationPlan:  implementationSteps(loc, patterns),
	}

	source, err := render("feature-class.java.tmpl", map[string]interface{}{
		"Package":     loc.PackageName,
		"ClassName":   loc.ClassName,
		"Description": req.Description,
		"Spring":      patterns.UsesSpring,
	})
	if err != nil {
		return nil, err
	}
	plan.CodeTemplates = []CodeTemplate{{
		Type:        "source",
		File:        loc.SourceFile,
		Content:     source,
		Description: "Main implementation class",
	}}

	if req.GenerateTests {
		test, err := render("feature-test.java.tmpl", loc)
		if err != nil {
			return nil, err
		}
		plan.TestTemplates = []CodeTemplate{{
			Type:        "test",
			File:        loc.TestFile,
			Content:     test,
			Description: "Unit test for " + loc.ClassName,
		}}
	}

	plan.Summary = FeatureSummary{
		FilesToCreate:       len(plan.CodeTemplates),
		EstimatedComplexity: EstimateComplexity(req.Description),
		Recommendations:     featureRecommendations(patterns),
	}
	if req.GenerateTests {
		plan.Summary.TestFilesToCreate = len(plan.CodeTemplates)
	}
	return plan, nil
}

// DetectPatterns inspects up to 50 Java files under root for naming
// suffixes, interfaces, abstract classes, Spring stereotypes and builders.
func DetectPatterns(ctx context.Context, root string) (*CodePatterns, error) {
	files, err := scan.JavaFiles(ctx, root, scan.FileFilter{IncludeTests: true})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &CodePatterns{Message: "No Java files found for pattern analysis", CommonSuffixes: []string{}}, nil
	}
	if len(files) > maxPatternFiles {
		files = files[:maxPatternFiles]
	}

	p := &CodePatterns{FilesAnalyzed: len(files)}
	found := map[string]bool{}
	for _, path := range files {
		file, err := javasrc.ParseFile(path)
		if err != nil {
			continue
		}
		for _, t := range file.AllTypes() {
			if !t.IsClassOrInterface() {
				continue
			}
			for _, suffix := range knownSuffixes {
				if strings.HasSuffix(t.Name, suffix) {
					found[suffix] = true
				}
			}
			if t.Kind == javasrc.KindInterface {
				p.UsesInterfaces = true
			} else if t.IsAbstract() {
				p.UsesAbstractClasses = true
			}
			if hasStereotype(t.Annotations) {
				p.UsesSpring = true
			}
			for _, m := range t.Methods {
				if m.Name == "builder" {
					p.UsesBuilderPattern = true
				}
			}
		}
	}

	p.CommonSuffixes = []string{}
	for _, suffix := range knownSuffixes {
		if found[suffix] {
			p.CommonSuffixes = append(p.CommonSuffixes, suffix)
		}
	}
	return p, nil
}

func hasStereotype(annotations []string) bool {
	for _, a := range annotations {
		for _, s := range springStereotypes {
			if strings.Contains(a, s) {
				return true
			}
		}
	}
	return false
}

// InferClassName builds a class name from the significant words of the
// description and appends the project's preferred suffix
func InferClassName(description string, suffixes []string) string {
	var name strings.Builder
	for _, word := range strings.Fields(description) {
		word = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, word)
		if len(word) <= 2 || commonWords[strings.ToLower(word)] {
			continue
		}
		name.WriteString(capitalize(strings.ToLower(word)))
		if name.Len() > maxClassNameSize {
			break
		}
	}

	lower := strings.ToLower(description)
	class := name.String()
	switch {
	case strings.Contains(lower, "service") || slices.Contains(suffixes, "Service"):
		if !strings.HasSuffix(class, "Service") {
			class += "Service"
		}
	case strings.Contains(lower, "controller") || slices.Contains(suffixes, "Controller"):
		if !strings.HasSuffix(class, "Controller") {
			class += "Controller"
		}
	case len(suffixes) > 0 && !hasAnySuffix(class, suffixes):
		class += suffixes[0]
	}
	if class == "" {
		return "NewFeature"
	}
	return class
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func inferModule(description string) string {
	lower := strings.ToLower(description)
	switch {
	case strings.Contains(lower, "api") || strings.Contains(lower, "rest"):
		return "api"
	case strings.Contains(lower, "core") || strings.Contains(lower, "service"):
		return "core"
	}
	return "main"
}

func inferPackage(description string) string {
	lower := strings.ToLower(description)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case containsAny("controller", "rest", "api"):
		return "com.example.controller"
	case containsAny("service"):
		return "com.example.service"
	case containsAny("repository", "dao"):
		return "com.example.repository"
	case containsAny("util", "helper"):
		return "com.example.util"
	}
	return "com.example.feature"
}

func implementationSteps(loc Location, patterns *CodePatterns) []PlanStep {
	steps := []PlanStep{
		{Step: 1, Action: "Create class " + loc.ClassName, File: loc.SourceFile, Description: "Create main implementation class"},
		{Step: 2, Action: "Implement core methods", Description: "Add methods based on feature description"},
	}
	if patterns.UsesInterfaces {
		steps = append(steps, PlanStep{Step: 3, Action: "Consider creating interface", Description: "Project uses interface pattern"})
	}
	return append(steps, PlanStep{Step: 4, Action: "Create unit tests", File: loc.TestFile, Description: "Create comprehensive test coverage"})
}

// EstimateComplexity grades a description by its word count
func EstimateComplexity(description string) string {
	switch n := len(strings.Fields(description)); {
	case n < 10:
		return "low"
	case n < 20:
		return "medium"
	}
	return "high"
}

func featureRecommendations(patterns *CodePatterns) []string {
	recs := []string{"Follow existing code patterns detected in the project"}
	if patterns.UsesSpring {
		recs = append(recs, "Use Spring annotations (@Service, @Component, etc.)")
	}
	if patterns.UsesBuilderPattern {
		recs = append(recs, "Consider using builder pattern for complex objects")
	}
	return append(recs,
		"Write comprehensive unit tests with >80% coverage",
		"Add proper logging for debugging and monitoring",
		"Document public APIs with JavaDoc")
}
