package maven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Scopes accepted by the scope filter
var Scopes = []string{"all", "compile", "test", "runtime", "provided"}

const maxTreeEntries = 100

var (
	treeLinePattern   = regexp.MustCompile(`([+\\\-\s|]+)([\w.-]+):([\w.-]+):(\w+):([\w.-]+)`)
	coordinatePattern = regexp.MustCompile(`([\w.-]+):([\w.-]+):(\w+):([\w.-]+)`)
	oldVersionPattern = regexp.MustCompile(`^[12]\.`)
)

// DependencyOptions selects what AnalyzeDependencies inspects
type DependencyOptions struct {
	Path         string
	Module       string
	Scope        string
	CheckUpdates bool
}

// DirectDependency is a declared dependency after scope filtering
type DirectDependency struct {
	GroupID        string `json:"groupId"`
	ArtifactID     string `json:"artifactId"`
	Version        string `json:"version"`
	Scope          string `json:"scope"`
	Optional       bool   `json:"optional"`
	HasExclusions  bool   `json:"hasExclusions,omitempty"`
	ExclusionCount int    `json:"exclusionCount,omitempty"`
}

// DirectDependencies groups the declared dependencies
type DirectDependencies struct {
	Count        int                `json:"count"`
	Dependencies []DirectDependency `json:"dependencies"`
	ByScope      map[string]int     `json:"byScope"`
}

// DependencyTree is the parsed output of dependency:tree
type DependencyTree struct {
	Success    bool     `json:"success"`
	TreeOutput []string `json:"treeOutput,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// VersionConflict is an artifact resolved at more than one version
type VersionConflict struct {
	Artifact       string   `json:"artifact"`
	Versions       []string `json:"versions"`
	Severity       string   `json:"severity"`
	Recommendation string   `json:"recommendation"`
}

// UnusedDependency is reported by dependency:analyze
type UnusedDependency struct {
	GroupID        string `json:"groupId"`
	ArtifactID     string `json:"artifactId"`
	Type           string `json:"type"`
	Version        string `json:"version"`
	Recommendation string `json:"recommendation"`
}

// UpdateCandidate is a dependency whose version looks dated
type UpdateCandidate struct {
	GroupID        string `json:"groupId"`
	ArtifactID     string `json:"artifactId"`
	CurrentVersion string `json:"currentVersion"`
	Recommendation string `json:"recommendation"`
}

// ProjectInfo identifies the analysed project
type ProjectInfo struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

// DependencySummary totals the report
type DependencySummary struct {
	TotalDirectDependencies int `json:"totalDirectDependencies"`
	VersionConflicts        int `json:"versionConflicts"`
	UnusedDependencies      int `json:"unusedDependencies"`
	HealthScore             int `json:"healthScore"`
}

// DependencyReport is the result of AnalyzeDependencies
type DependencyReport struct {
	ProjectPath        string             `json:"projectPath"`
	Module             string             `json:"module,omitempty"`
	Timestamp          string             `json:"timestamp"`
	ProjectInfo        ProjectInfo        `json:"projectInfo"`
	DirectDependencies DirectDependencies `json:"directDependencies"`
	DependencyTree     DependencyTree     `json:"dependencyTree"`
	VersionConflicts   []VersionConflict  `json:"versionConflicts"`
	UnusedDependencies []UnusedDependency `json:"unusedDependencies"`
	AvailableUpdates   []UpdateCandidate  `json:"availableUpdates,omitempty"`
	Recommendations    []string           `json:"recommendations"`
	Summary            DependencySummary  `json:"summary"`
}

// DependencyAnalyzer combines the pom model with Maven's own reports
type DependencyAnalyzer struct {
	exe Executor
	now func() time.Time
}

// NewDependencyAnalyzer creates an analyzer running Maven through exe
func NewDependencyAnalyzer(exe Executor) *DependencyAnalyzer {
	return &DependencyAnalyzer{exe: exe, now: time.Now}
}

// Analyze builds a dependency report. Argument problems and unreadable
// pom files are errors; Maven failures degrade the report instead.
func (a *DependencyAnalyzer) Analyze(ctx context.Context, opts DependencyOptions) (*DependencyReport, error) {
	if opts.Scope == "" {
		opts.Scope = "all"
	}
	if !validScope(opts.Scope) {
		return nil, fmt.Errorf("invalid scope: %s (expected one of %s)", opts.Scope, strings.Join(Scopes, ", "))
	}
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("Project path does not exist: %s", opts.Path)
	}

	workDir := opts.Path
	if opts.Module != "" {
		workDir = filepath.Join(opts.Path, opts.Module)
	}
	pomPath := filepath.Join(workDir, PomFileName)
	if _, err := os.Stat(pomPath); err != nil {
		return nil, fmt.Errorf("pom.xml not found at: %s", pomPath)
	}

	pom, err := ReadPOM(pomPath)
	if err != nil {
		return nil, err
	}

	report := &DependencyReport{
		ProjectPath: opts.Path,
		Module:      opts.Module,
		Timestamp:   a.now().UTC().Format(time.RFC3339),
		ProjectInfo: ProjectInfo{
			GroupID:    orUnknown(pom.EffectiveGroupID()),
			ArtifactID: pom.ArtifactID,
			Version:    orUnknown(pom.EffectiveVersion()),
		},
		DirectDependencies: directDependencies(pom, opts.Scope),
	}

	report.DependencyTree = a.dependencyTree(ctx, pomPath)
	report.VersionConflicts = DetectVersionConflicts(report.DependencyTree.TreeOutput)
	report.UnusedDependencies = a.unusedDependencies(ctx, pomPath)
	if opts.CheckUpdates {
		report.AvailableUpdates = updateCandidates(pom)
	}
	report.Recommendations = dependencyRecommendations(report.VersionConflicts, report.UnusedDependencies)
	report.Summary = DependencySummary{
		TotalDirectDependencies: report.DirectDependencies.Count,
		VersionConflicts:        len(report.VersionConflicts),
		UnusedDependencies:      len(report.UnusedDependencies),
		HealthScore:             HealthScore(len(report.VersionConflicts), len(report.UnusedDependencies)),
	}
	return report, nil
}

func validScope(scope string) bool {
	for _, s := range Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func directDependencies(pom *Project, scope string) DirectDependencies {
	result := DirectDependencies{
		Dependencies: []DirectDependency{},
		ByScope:      map[string]int{},
	}
	for _, dep := range pom.Dependencies {
		depScope := dep.EffectiveScope()
		if scope != "all" && depScope != scope {
			continue
		}
		version := dep.Version
		if version == "" {
			version = "managed"
		}
		result.Dependencies = append(result.Dependencies, DirectDependency{
			GroupID:        dep.GroupID,
			ArtifactID:     dep.ArtifactID,
			Version:        version,
			Scope:          depScope,
			Optional:       dep.Optional,
			HasExclusions:  len(dep.Exclusions) > 0,
			ExclusionCount: len(dep.Exclusions),
		})
		result.ByScope[depScope]++
	}
	result.Count = len(result.Dependencies)
	return result
}

func (a *DependencyAnalyzer) dependencyTree(ctx context.Context, pomPath string) DependencyTree {
	res, err := a.exe.Execute(ctx, Invocation{POM: pomPath, Goals: []string{"dependency:tree"}, BatchMode: true})
	if err != nil {
		return DependencyTree{Message: "Maven dependency:tree execution failed: " + err.Error()}
	}
	if res.ExitCode != 0 {
		return DependencyTree{Message: "Failed to execute dependency:tree"}
	}
	return DependencyTree{Success: true, TreeOutput: ParseTree(res.Output)}
}

func (a *DependencyAnalyzer) unusedDependencies(ctx context.Context, pomPath string) []UnusedDependency {
	res, err := a.exe.Execute(ctx, Invocation{POM: pomPath, Goals: []string{"dependency:analyze"}, BatchMode: true})
	if err != nil || res.ExitCode != 0 {
		return []UnusedDependency{}
	}
	return ParseUnused(res.Output)
}

// ParseTree extracts group:artifact:version entries from dependency:tree
// output, at most 100 of them
func ParseTree(output string) []string {
	deps := []string{}
	for _, line := range strings.Split(output, "\n") {
		m := treeLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, m[2]+":"+m[3]+":"+m[5])
		if len(deps) == maxTreeEntries {
			break
		}
	}
	return deps
}

// ParseUnused extracts the "Unused declared dependencies found" block of
// dependency:analyze output
func ParseUnused(output string) []UnusedDependency {
	unused := []UnusedDependency{}
	idx := strings.Index(output, "Unused declared dependencies found:")
	if idx < 0 {
		return unused
	}

	for _, line := range strings.Split(output[idx:], "\n")[1:] {
		trimmed := strings.TrimSpace(stripLevel(line))
		m := coordinatePattern.FindStringSubmatch(trimmed)
		if m == nil || !strings.HasPrefix(trimmed, m[0]) {
			break
		}
		unused = append(unused, UnusedDependency{
			GroupID:        m[1],
			ArtifactID:     m[2],
			Type:           m[3],
			Version:        m[4],
			Recommendation: "Consider removing if truly unused",
		})
	}
	return unused
}

// stripLevel removes a leading "[WARNING]" style marker
func stripLevel(line string) string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end > 0 {
			return line[end+1:]
		}
	}
	return line
}

// DetectVersionConflicts reports artifacts that appear with several versions,
// sorted by artifact
func DetectVersionConflicts(tree []string) []VersionConflict {
	versions := map[string][]string{}
	var order []string
	for _, dep := range tree {
		parts := strings.Split(dep, ":")
		if len(parts) < 3 {
			continue
		}
		artifact := parts[0] + ":" + parts[1]
		if _, seen := versions[artifact]; !seen {
			order = append(order, artifact)
		}
		if !contains(versions[artifact], parts[2]) {
			versions[artifact] = append(versions[artifact], parts[2])
		}
	}
	sort.Strings(order)

	conflicts := []VersionConflict{}
	for _, artifact := range order {
		if len(versions[artifact]) > 1 {
			conflicts = append(conflicts, VersionConflict{
				Artifact:       artifact,
				Versions:       versions[artifact],
				Severity:       "medium",
				Recommendation: "Add dependency management to enforce a single version",
			})
		}
	}
	return conflicts
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func updateCandidates(pom *Project) []UpdateCandidate {
	updates := []UpdateCandidate{}
	for _, dep := range pom.Dependencies {
		if dep.Version == "" || strings.Contains(dep.Version, "${") {
			continue
		}
		if oldVersionPattern.MatchString(dep.Version) {
			updates = append(updates, UpdateCandidate{
				GroupID:        dep.GroupID,
				ArtifactID:     dep.ArtifactID,
				CurrentVersion: dep.Version,
				Recommendation: "Check Maven Central for latest version",
			})
		}
	}
	return updates
}

func dependencyRecommendations(conflicts []VersionConflict, unused []UnusedDependency) []string {
	var recs []string
	if len(conflicts) > 0 {
		recs = append(recs, fmt.Sprintf("Resolve %d version conflicts using <dependencyManagement>", len(conflicts)))
	}
	if len(unused) > 0 {
		recs = append(recs, fmt.Sprintf("Remove %d unused dependencies to reduce bloat", len(unused)))
	}
	if len(conflicts) == 0 && len(unused) == 0 {
		return append(recs, "Dependency health is good! No major issues found.")
	}
	return append(recs,
		"Run 'mvn dependency:tree' to visualize full dependency graph",
		"Use 'mvn versions:display-dependency-updates' to check for updates",
	)
}

// HealthScore is 100 minus 5 per conflict and 2 per unused dependency, floored at 0
func HealthScore(conflicts, unused int) int {
	score := 100 - conflicts*5 - unused*2
	if score < 0 {
		return 0
	}
	return score
}
