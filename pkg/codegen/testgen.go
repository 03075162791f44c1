package codegen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdlc-tools/mcp-server/pkg/javasrc"
)

const (
	maxMocks          = 3
	maxTestedMethods  = 5
	maxPlannedMethods = 10
	maxBuilderFields  = 5
)

// ErrNoClass is returned when a source file declares no class
var ErrNoClass = errors.New("No public class found in the source file")

// TestOptions controls the generated test skeleton
type TestOptions struct {
	Framework       string // junit5 or junit4
	MockingLibrary  string // mockito, easymock or none
	Parameterized   bool
	EdgeCases       bool
	OutputDirectory string
}

type ClassAnalysis struct {
	ClassName        string   `json:"className"`
	IsAbstract       bool     `json:"isAbstract"`
	IsFinal          bool     `json:"isFinal"`
	PublicMethods    int      `json:"publicMethods"`
	StaticMethods    int      `json:"staticMethods"`
	TotalMethods     int      `json:"totalMethods"`
	ConstructorCount int      `json:"constructorCount"`
	Dependencies     []string `json:"dependencies"`
}

type TestMethod struct {
	MethodName     string   `json:"methodName"`
	ReturnType     string   `json:"returnType"`
	ParameterCount int      `json:"parameterCount"`
	ParameterTypes []string `json:"parameterTypes"`
	TestScenarios  []string `json:"testScenarios"`
}

type TestDataBuilder struct {
	BuilderClassName string   `json:"builderClassName"`
	Purpose          string   `json:"purpose"`
	BuildableFields  []string `json:"buildableFields"`
	SampleCode       string   `json:"sampleCode"`
}

type CoverageAnalysis struct {
	EstimatedCoverage    int      `json:"estimatedCoveragePercentage"`
	MethodsToCover       int      `json:"methodsToCover"`
	StaticMethodsToCover int      `json:"staticMethodsToCover"`
	Recommendations      []string `json:"recommendations"`
}

type TestSummary struct {
	TotalTestMethods  int      `json:"totalTestMethodsToGenerate"`
	TotalScenarios    int      `json:"totalScenarios"`
	TestDataBuilders  int      `json:"testDataBuilders"`
	EstimatedCoverage int      `json:"estimatedCoveragePercentage"`
	NextSteps         []string `json:"nextSteps"`
}

// TestPlan is the result of PlanTests
type TestPlan struct {
	SourceFile        string            `json:"sourceFile"`
	Timestamp         string            `json:"timestamp"`
	ClassAnalysis     ClassAnalysis     `json:"classAnalysis"`
	GeneratedTestCode string            `json:"generatedTestCode"`
	TestMethods       []TestMethod      `json:"testMethods"`
	TestDataBuilders  []TestDataBuilder `json:"testDataBuilders"`
	CoverageAnalysis  CoverageAnalysis  `json:"coverageAnalysis"`
	SavedTestFile     string            `json:"savedTestFile,omitempty"`
	Summary           TestSummary       `json:"summary"`
}

type mockField struct {
	Type string
	Name string
}

type testClassData struct {
	Package       string
	ClassName     string
	JUnit4        bool
	Mockito       bool
	Parameterized bool
	EdgeCases     bool
	Mocks         []mockField
	Methods       []string
}

type builderField struct {
	Name string
	Type string
}

type builderData struct {
	ClassName string
	Fields    []builderField
	First     *builderField
}

// PlanTests analyzes the first class in the Java file at path and drafts a
// unit test class for it. With opts.OutputDirectory set the draft is also
// written there.
func PlanTests(path string, opts TestOptions) (*TestPlan, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("File not found: %s", path)
	}
	if !strings.HasSuffix(path, ".java") {
		return nil, errors.New("File must be a Java source file (.java)")
	}
	file, err := javasrc.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	class := file.FirstClass()
	if class == nil {
		return nil, ErrNoClass
	}

	plan := &TestPlan{
		SourceFile:    path,
		ClassAnalysis: analyzeClass(class),
		TestMethods:   planMethods(class, opts.EdgeCases),
	}

	plan.GeneratedTestCode, err = render("test-class.java.tmpl", testClassData{
		Package:       file.Package,
		ClassName:     class.Name,
		JUnit4:        opts.Framework == "junit4",
		Mockito:       opts.MockingLibrary == "mockito",
		Parameterized: opts.Parameterized,
		EdgeCases:     opts.EdgeCases,
		Mocks:         mocks(plan.ClassAnalysis.Dependencies, opts.MockingLibrary),
		Methods:       testedMethods(class),
	})
	if err != nil {
		return nil, err
	}

	builder, err := dataBuilder(class)
	if err != nil {
		return nil, err
	}
	if builder != nil {
		plan.TestDataBuilders = append(plan.TestDataBuilders, *builder)
	}

	plan.CoverageAnalysis = coverage(class)

	if opts.OutputDirectory != "" {
		target := filepath.Join(opts.OutputDirectory, class.Name+"Test.java")
		if err := os.MkdirAll(opts.OutputDirectory, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", opts.OutputDirectory, err)
		}
		if err := os.WriteFile(target, []byte(plan.GeneratedTestCode), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", target, err)
		}
		plan.SavedTestFile = target
	}

	scenarios := 0
	for _, m := range plan.TestMethods {
		scenarios += len(m.TestScenarios)
	}
	plan.Summary = TestSummary{
		TotalTestMethods:  len(plan.TestMethods),
		TotalScenarios:    scenarios,
		TestDataBuilders:  len(plan.TestDataBuilders),
		EstimatedCoverage: plan.CoverageAnalysis.EstimatedCoverage,
		NextSteps: []string{
			"Review generated test methods for accuracy",
			"Customize test data based on business logic",
			"Implement test data builders for complex objects",
			"Run tests and verify coverage metrics",
			"Add integration tests for multi-component scenarios",
		},
	}
	return plan, nil
}

func analyzeClass(class *javasrc.Type) ClassAnalysis {
	a := ClassAnalysis{
		ClassName:        class.Name,
		IsAbstract:       class.IsAbstract(),
		IsFinal:          class.IsFinal(),
		TotalMethods:     len(class.Methods),
		ConstructorCount: class.Constructors,
		Dependencies:     []string{},
	}
	a.PublicMethods, a.StaticMethods = countPublic(class)
	for _, f := range class.Fields {
		if !f.IsStatic() {
			a.Dependencies = append(a.Dependencies, f.Type)
		}
	}
	return a
}

// countPublic returns the number of public instance and public static
// methods
func countPublic(class *javasrc.Type) (instance, static int) {
	for _, m := range class.Methods {
		switch {
		case !m.IsPublic():
		case m.IsStatic():
			static++
		default:
			instance++
		}
	}
	return instance, static
}

func planMethods(class *javasrc.Type, edgeCases bool) []TestMethod {
	methods := []TestMethod{}
	for _, m := range class.Methods {
		if !m.IsPublic() || m.IsStatic() {
			continue
		}
		if len(methods) == maxPlannedMethods {
			break
		}
		name := capitalize(m.Name)
		scenarios := []string{name + " - Happy path"}
		if edgeCases {
			scenarios = append(scenarios,
				name+" - Null input",
				name+" - Empty input",
				name+" - Exception handling")
		}
		methods = append(methods, TestMethod{
			MethodName:     m.Name,
			ReturnType:     m.ReturnType,
			ParameterCount: len(m.Params),
			ParameterTypes: m.ParamTypes(),
			TestScenarios:  scenarios,
		})
	}
	return methods
}

func testedMethods(class *javasrc.Type) []string {
	var names []string
	for _, m := range class.Methods {
		if m.IsPublic() && !m.IsStatic() {
			names = append(names, m.Name)
			if len(names) == maxTestedMethods {
				break
			}
		}
	}
	return names
}

func mocks(deps []string, library string) []mockField {
	if library != "mockito" {
		return nil
	}
	var fields []mockField
	for _, dep := range deps {
		if len(fields) == maxMocks {
			break
		}
		fields = append(fields, mockField{Type: dep, Name: "mock" + capitalize(simpleName(dep))})
	}
	return fields
}

// simpleName drops type arguments and array brackets from a type
func simpleName(typ string) string {
	if i := strings.IndexAny(typ, "<["); i >= 0 {
		typ = typ[:i]
	}
	if i := strings.LastIndex(typ, "."); i >= 0 {
		typ = typ[i+1:]
	}
	return strings.TrimSpace(typ)
}

func dataBuilder(class *javasrc.Type) (*TestDataBuilder, error) {
	if len(class.Fields) == 0 {
		return nil, nil
	}
	data := builderData{ClassName: class.Name}
	buildable := []string{}
	for _, f := range class.Fields {
		if len(data.Fields) == maxBuilderFields {
			break
		}
		data.Fields = append(data.Fields, builderField{Name: f.Name, Type: f.Type})
		buildable = append(buildable, f.Name+": "+f.Type)
	}
	data.First = &data.Fields[0]

	code, err := render("builder.java.tmpl", data)
	if err != nil {
		return nil, err
	}
	return &TestDataBuilder{
		BuilderClassName: class.Name + "Builder",
		Purpose:          "Build test instances of " + class.Name,
		BuildableFields:  buildable,
		SampleCode:       code,
	}, nil
}

func coverage(class *javasrc.Type) CoverageAnalysis {
	c := CoverageAnalysis{Recommendations: []string{}}
	c.MethodsToCover, c.StaticMethodsToCover = countPublic(class)
	if c.MethodsToCover > 0 {
		c.EstimatedCoverage = 70
	}
	if c.MethodsToCover > 5 {
		c.Recommendations = append(c.Recommendations,
			"Consider breaking down tests into separate test classes for better organization")
	}
	if c.StaticMethodsToCover > 0 {
		c.Recommendations = append(c.Recommendations,
			"Static methods may require PowerMock or similar tools for thorough testing")
	}
	c.Recommendations = append(c.Recommendations,
		"Aim for at least 80% code coverage",
		"Test both happy paths and exception scenarios")
	return c
}
