package scan

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Smell severities, lowest first
var smellLevels = map[string]int{"low": 1, "medium": 2, "high": 3}

// ComplexMethod flags a file whose estimated complexity exceeds the threshold
type ComplexMethod struct {
	File                string `json:"file"`
	EstimatedComplexity int    `json:"estimatedComplexity"`
	Recommendation      string `json:"recommendation"`
}

// Complexity is the aggregate complexity estimate
type Complexity struct {
	TotalMethods       int             `json:"totalMethods"`
	ComplexMethodCount int             `json:"complexMethodCount"`
	MaxComplexity      int             `json:"maxComplexity"`
	ComplexMethods     []ComplexMethod `json:"complexMethods"`
	AverageComplexity  int             `json:"averageComplexity"`
}

// CodeSmell is one structural issue in a file
type CodeSmell struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	File           string `json:"file"`
	Lines          int    `json:"lines,omitempty"`
	MethodCount    int    `json:"methodCount,omitempty"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// QualitySummary grades the check
type QualitySummary struct {
	TotalIssues     int      `json:"totalIssues"`
	ComplexMethods  int      `json:"complexMethods"`
	CodeSmells      int      `json:"codeSmells"`
	QualityGrade    string   `json:"qualityGrade"`
	Recommendations []string `json:"recommendations"`
}

// QualityReport is the result of a code quality check
type QualityReport struct {
	ProjectPath  string         `json:"projectPath"`
	FilesScanned int            `json:"filesScanned"`
	Complexity   Complexity     `json:"complexity"`
	CodeSmells   []CodeSmell    `json:"codeSmells"`
	Summary      QualitySummary `json:"summary"`
}

// QualityOptions configures a check
type QualityOptions struct {
	Path string
	// Severity is the minimum smell severity reported: low, medium or high
	Severity     string
	IncludeTests bool
}

const (
	complexityThreshold = 10
	largeClassLines     = 500
	longMethodLines     = 50
	godClassMethods     = 30
)

var magicNumberPattern = regexp.MustCompile(`[^\w](\d{2,})[^\w.]`)

// lineCount counts lines the way a line reader would, ignoring a trailing newline
func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// estimateComplexity counts control structures in source text
func estimateComplexity(content string) (methods, complexity int) {
	for _, kw := range []string{"public ", "private ", "protected "} {
		methods += strings.Count(content, kw)
	}
	for _, kw := range []string{"if ", "for ", "while ", "switch ", "catch "} {
		complexity += strings.Count(content, kw)
	}
	return methods, complexity
}

// DetectSmells returns the code smells of one file
func DetectSmells(file, content string) []CodeSmell {
	var smells []CodeSmell

	if lines := lineCount(content); lines > largeClassLines {
		smells = append(smells, CodeSmell{
			Type:           "LargeClass",
			Severity:       "medium",
			File:           file,
			Lines:          lines,
			Message:        fmt.Sprintf("Class has %d lines. Consider splitting into smaller classes.", lines),
			Recommendation: "Extract related methods into new classes following Single Responsibility Principle",
		})
	}

	// one long block per file is enough
	for _, block := range strings.Split(content, "{") {
		if lines := lineCount(block); lines > longMethodLines {
			smells = append(smells, CodeSmell{
				Type:           "LongMethod",
				Severity:       "low",
				File:           file,
				Lines:          lines,
				Message:        fmt.Sprintf("Method has %d lines", lines),
				Recommendation: "Extract method or decompose into smaller methods",
			})
			break
		}
	}

	if methods := strings.Count(content, "public ") + strings.Count(content, "private "); methods > godClassMethods {
		smells = append(smells, CodeSmell{
			Type:           "GodClass",
			Severity:       "high",
			File:           file,
			MethodCount:    methods,
			Message:        fmt.Sprintf("Class has %d methods, likely violating Single Responsibility", methods),
			Recommendation: "Decompose into multiple focused classes",
		})
	}

	if !strings.Contains(content, "static final") && hasMagicNumber(content) {
		smells = append(smells, CodeSmell{
			Type:           "MagicNumbers",
			Severity:       "low",
			File:           file,
			Message:        "Potential magic numbers found",
			Recommendation: "Extract magic numbers to named constants",
		})
	}
	return smells
}

func hasMagicNumber(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if magicNumberPattern.MatchString(line) {
			return true
		}
	}
	return false
}

// QualityGrade maps an issue count to a letter grade
func QualityGrade(totalIssues int) string {
	switch {
	case totalIssues == 0:
		return "A"
	case totalIssues < 10:
		return "B"
	case totalIssues < 25:
		return "C"
	case totalIssues < 50:
		return "D"
	default:
		return "F"
	}
}

// CheckQuality estimates complexity and detects code smells under opts.Path
func CheckQuality(ctx context.Context, opts QualityOptions) (*QualityReport, error) {
	severity := strings.ToLower(opts.Severity)
	if severity == "" {
		severity = "medium"
	}
	minLevel, ok := smellLevels[severity]
	if !ok {
		return nil, fmt.Errorf("invalid severity: %s", opts.Severity)
	}
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("Project path does not exist: %s", opts.Path)
	}

	files, err := JavaFiles(ctx, opts.Path, FileFilter{IncludeTests: opts.IncludeTests})
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		ProjectPath:  opts.Path,
		FilesScanned: len(files),
		Complexity:   Complexity{ComplexMethods: []ComplexMethod{}},
		CodeSmells:   []CodeSmell{},
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		content := strings.ReplaceAll(string(data), "\r\n", "\n")

		methods, complexity := estimateComplexity(content)
		report.Complexity.TotalMethods += methods
		if complexity > complexityThreshold && methods > 0 {
			report.Complexity.ComplexMethodCount++
			report.Complexity.ComplexMethods = append(report.Complexity.ComplexMethods, ComplexMethod{
				File:                file,
				EstimatedComplexity: complexity,
				Recommendation:      "Consider refactoring to reduce complexity",
			})
		}
		if complexity > report.Complexity.MaxComplexity {
			report.Complexity.MaxComplexity = complexity
		}

		for _, smell := range DetectSmells(file, content) {
			if smellLevels[smell.Severity] >= minLevel {
				report.CodeSmells = append(report.CodeSmells, smell)
			}
		}
	}
	if report.Complexity.TotalMethods > 0 && len(files) > 0 {
		report.Complexity.AverageComplexity = report.Complexity.MaxComplexity / len(files)
	}

	report.Summary = summarizeQuality(report.Complexity.ComplexMethodCount, len(report.CodeSmells))
	return report, nil
}

func summarizeQuality(complexMethods, smells int) QualitySummary {
	total := complexMethods + smells
	summary := QualitySummary{
		TotalIssues:    total,
		ComplexMethods: complexMethods,
		CodeSmells:     smells,
		QualityGrade:   QualityGrade(total),
	}
	if complexMethods > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("Refactor %d complex methods to improve maintainability", complexMethods))
	}
	if smells > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("Address %d code smells identified", smells))
	}
	if len(summary.Recommendations) == 0 {
		summary.Recommendations = []string{"Code quality is excellent! No major issues found."}
	}
	return summary
}
