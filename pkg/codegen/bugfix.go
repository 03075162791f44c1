package codegen

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sdlc-tools/mcp-server/pkg/scan"
)

const maxLocations = 10

var (
	stackFramePattern = regexp.MustCompile(`at\s+([\w.]+)\(([\w.]+):(\d+)\)`)
	keywordPattern    = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9]*\b`)
	methodCallPattern = regexp.MustCompile(`\.\w+\(.*\)`)
	tryWithResources  = regexp.MustCompile(`\btry\s*\(`)
	nonAlphanumeric   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// bugTypes maps lowercase markers in a report to the bug type they
// indicate. The first matching rule wins.
var bugTypes = []struct {
	markers []string
	bugType string
}{
	{[]string{"nullpointerexception", "null pointer"}, "NullPointerException"},
	{[]string{"arrayindexoutofbounds", "index out of bounds"}, "ArrayIndexOutOfBoundsException"},
	{[]string{"classcastexception"}, "ClassCastException"},
	{[]string{"concurrentmodificationexception"}, "ConcurrentModificationException"},
	{[]string{"stackoverflow"}, "StackOverflowError"},
	{[]string{"memory", "outofmemory"}, "OutOfMemoryError"},
	{[]string{"deadlock"}, "Deadlock"},
	{[]string{"resource leak", "not closed"}, "ResourceLeak"},
	{[]string{"wrong", "incorrect", "unexpected"}, "LogicError"},
}

// BugReport describes a reported defect
type BugReport struct {
	ProjectPath  string
	Description  string
	StackTrace   string
	AffectedFile string
	GenerateTest bool
}

type StackFrame struct {
	FullClass string `json:"fullClass"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

type BugLocation struct {
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	Confidence string `json:"confidence"`
	Source     string `json:"source"`
}

type BugPattern struct {
	File        string `json:"file"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type FixSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example"`
	Priority    string `json:"priority"`
}

type RegressionTest struct {
	TestMethod     string `json:"testMethod"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

type BugSummary struct {
	BugType             string `json:"bugType"`
	LocationsFound      int    `json:"locationsFound"`
	PatternsDetected    int    `json:"patternsDetected"`
	FixSuggestionsCount int    `json:"fixSuggestionsCount"`
	Confidence          string `json:"confidence"`
}

// BugAnalysis is the result of AnalyzeBug
type BugAnalysis struct {
	ProjectPath        string          `json:"projectPath"`
	BugDescription     string          `json:"bugDescription"`
	Timestamp          string          `json:"timestamp"`
	StackFrames        []StackFrame    `json:"stackFrames"`
	BugType            string          `json:"bugType"`
	PotentialLocations []BugLocation   `json:"potentialLocations"`
	DetectedPatterns   []BugPattern    `json:"detectedPatterns"`
	FixSuggestions     []FixSuggestion `json:"fixSuggestions"`
	RegressionTest     *RegressionTest `json:"regressionTest,omitempty"`
	Summary            BugSummary      `json:"summary"`
}

// AnalyzeBug locates the likely source of a reported bug from its stack
// trace, an explicitly named file or class names in the description, then
// scans those files for patterns typical of the bug type.
func AnalyzeBug(ctx context.Context, report BugReport) (*BugAnalysis, error) {
	if err := checkProject(report.ProjectPath); err != nil {
		return nil, err
	}

	a := &BugAnalysis{
		ProjectPath:    report.ProjectPath,
		BugDescription: report.Description,
		StackFrames:    ParseStackTrace(report.StackTrace),
		BugType:        IdentifyBugType(report.Description, report.StackTrace),
	}

	var err error
	a.PotentialLocations, err = locate(ctx, report, a.StackFrames)
	if err != nil {
		return nil, err
	}
	a.DetectedPatterns = detectBugPatterns(a.BugType, a.PotentialLocations)
	a.FixSuggestions = fixSuggestions(a.BugType, a.DetectedPatterns)

	if report.GenerateTest {
		code, err := render("regression-test.java.tmpl", map[string]string{
			"Name":        nonAlphanumeric.ReplaceAllString(a.BugType, ""),
			"Description": strings.Join(strings.Fields(report.Description), " "),
			"BugType":     a.BugType,
		})
		if err != nil {
			return nil, err
		}
		a.RegressionTest = &RegressionTest{
			TestMethod:     code,
			Description:    "Regression test to prevent bug recurrence",
			Recommendation: "Add this test to the relevant test class",
		}
	}

	a.Summary = BugSummary{
		BugType:             a.BugType,
		LocationsFound:      len(a.PotentialLocations),
		PatternsDetected:    len(a.DetectedPatterns),
		FixSuggestionsCount: len(a.FixSuggestions),
		Confidence:          confidence(len(a.PotentialLocations), len(a.DetectedPatterns)),
	}
	return a, nil
}

// ParseStackTrace extracts "at pkg.Class.method(File.java:42)" frames
func ParseStackTrace(trace string) []StackFrame {
	frames := []StackFrame{}
	for _, m := range stackFramePattern.FindAllStringSubmatch(trace, -1) {
		line, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		frames = append(frames, StackFrame{FullClass: m[1], File: m[2], Line: line})
	}
	return frames
}

// IdentifyBugType classifies a report by the exception or symptom it names
func IdentifyBugType(description, trace string) string {
	combined := strings.ToLower(description + " " + trace)
	for _, rule := range bugTypes {
		for _, marker := range rule.markers {
			if strings.Contains(combined, marker) {
				return rule.bugType
			}
		}
	}
	return "Unknown"
}

func locate(ctx context.Context, report BugReport, frames []StackFrame) ([]BugLocation, error) {
	files, err := scan.JavaFiles(ctx, report.ProjectPath, scan.FileFilter{IncludeTests: true})
	if err != nil {
		return nil, err
	}

	locations := []BugLocation{}
	for _, frame := range frames {
		for _, path := range files {
			if filepath.Base(path) == frame.File {
				locations = append(locations, BugLocation{File: path, Line: frame.Line, Confidence: "high", Source: "stackTrace"})
			}
		}
	}

	if report.AffectedFile != "" {
		path := resolve(report.ProjectPath, report.AffectedFile)
		if _, err := os.Stat(path); err == nil {
			locations = append(locations, BugLocation{File: path, Confidence: "high", Source: "specified"})
		}
	}

	if len(locations) == 0 {
		locations = searchByKeywords(report.Description, files)
	}
	if len(locations) > maxLocations {
		locations = locations[:maxLocations]
	}
	return locations, nil
}

// searchByKeywords matches capitalized words of the description against
// file names. Keywords are tried in the order they appear.
func searchByKeywords(description string, files []string) []BugLocation {
	var keywords []string
	seen := map[string]bool{}
	for _, word := range keywordPattern.FindAllString(description, -1) {
		if !seen[word] {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	locations := []BugLocation{}
	if len(keywords) == 0 {
		return locations
	}
	for _, path := range files {
		name := filepath.Base(path)
		for _, keyword := range keywords {
			if strings.Contains(name, keyword) {
				locations = append(locations, BugLocation{File: path, Confidence: "medium", Source: "keyword: " + keyword})
				break
			}
		}
	}
	return locations
}

func detectBugPatterns(bugType string, locations []BugLocation) []BugPattern {
	patterns := []BugPattern{}
	add := func(file, description, severity string) {
		patterns = append(patterns, BugPattern{File: file, Description: description, Severity: severity})
	}
	for _, loc := range locations {
		data, err := os.ReadFile(loc.File)
		if err != nil {
			continue
		}
		content := string(data)

		switch bugType {
		case "NullPointerException":
			if strings.Contains(content, ".get(") && !strings.Contains(content, "!= null") {
				add(loc.File, "Missing null check before .get()", "high")
			}
			if hasMethodCallLine(content) && !strings.Contains(content, "@NonNull") {
				add(loc.File, "Method calls without null safety", "medium")
			}
		case "ResourceLeak":
			if strings.Contains(content, "new FileInputStream") && !tryWithResources.MatchString(content) {
				add(loc.File, "File stream without try-with-resources", "high")
			}
		case "ConcurrentModificationException":
			if strings.Contains(content, "iterator()") && strings.Contains(content, ".remove(") {
				add(loc.File, "Collection modified during iteration", "high")
			}
		}
	}
	return patterns
}

func hasMethodCallLine(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if methodCallPattern.MatchString(line) {
			return true
		}
	}
	return false
}

func fixSuggestions(bugType string, patterns []BugPattern) []FixSuggestion {
	var suggestions []FixSuggestion
	switch bugType {
	case "NullPointerException":
		suggestions = []FixSuggestion{
			{"Add null checks", "Add null safety checks before dereferencing objects",
				"if (object != null) { object.method(); }", "high"},
			{"Use Optional", "Use Java Optional to handle null values safely",
				"Optional.ofNullable(value).map(v -> v.method()).orElse(default)", "medium"},
		}
	case "ArrayIndexOutOfBoundsException":
		suggestions = []FixSuggestion{{"Add bounds checking", "Validate array index before access",
			"if (index >= 0 && index < array.length) { array[index] }", "high"}}
	case "ResourceLeak":
		suggestions = []FixSuggestion{{"Use try-with-resources", "Ensure resources are properly closed",
			"try (FileInputStream fis = new FileInputStream(file)) { ... }", "high"}}
	case "ConcurrentModificationException":
		suggestions = []FixSuggestion{{"Use Iterator.remove()", "Use iterator's remove method instead of collection's",
			"Iterator<T> it = list.iterator(); while(it.hasNext()) { if(condition) it.remove(); }", "high"}}
	case "LogicError":
		suggestions = []FixSuggestion{{"Review business logic", "Verify the algorithm and edge cases",
			"Add logging and validation to identify the logic flaw", "medium"}}
	default:
		suggestions = []FixSuggestion{{"Add defensive programming", "Add validation and error handling",
			"Validate inputs and handle edge cases", "medium"}}
	}

	for _, p := range patterns {
		suggestions = append(suggestions, FixSuggestion{
			Title:       "Fix pattern: " + p.Description,
			Description: "Address the detected code smell",
			Example:     "See location: " + p.File,
			Priority:    p.Severity,
		})
	}
	return suggestions
}

func confidence(locations, patterns int) string {
	switch {
	case locations == 0:
		return "low"
	case patterns >= 2:
		return "high"
	case patterns > 0:
		return "medium"
	}
	return "low"
}
