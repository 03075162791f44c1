package maven

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DependencyInfo is a declared dependency as reported by analysis
type DependencyInfo struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
	Scope      string `json:"scope"`
}

// ModuleInfo describes one module of a multi-module build
type ModuleInfo struct {
	Name                 string   `json:"name"`
	ArtifactID           string   `json:"artifactId,omitempty"`
	Packaging            string   `json:"packaging,omitempty"`
	DependencyCount      int      `json:"dependencyCount"`
	InternalDependencies []string `json:"internalDependencies"`
	HasMainSources       bool     `json:"hasMainSources"`
	HasTestSources       bool     `json:"hasTestSources"`
	Error                string   `json:"error,omitempty"`
}

// SourceStructure reports the standard Maven source layout
type SourceStructure struct {
	HasMainJava      bool `json:"hasMainJava"`
	HasMainResources bool `json:"hasMainResources"`
	HasTestJava      bool `json:"hasTestJava"`
	HasTestResources bool `json:"hasTestResources"`
	MainJavaFiles    int  `json:"mainJavaFiles"`
	TestJavaFiles    int  `json:"testJavaFiles"`
}

// ProjectAnalysis is the result of AnalyzeProject
type ProjectAnalysis struct {
	ProjectPath     string           `json:"projectPath"`
	ProjectType     string           `json:"projectType"`
	GroupID         string           `json:"groupId"`
	ArtifactID      string           `json:"artifactId"`
	Version         string           `json:"version"`
	Packaging       string           `json:"packaging"`
	ModuleCount     int              `json:"moduleCount"`
	Modules         []ModuleInfo     `json:"modules"`
	DependencyCount int              `json:"dependencyCount"`
	Dependencies    []DependencyInfo `json:"dependencies"`
	PluginCount     int              `json:"pluginCount"`
	Plugins         []string         `json:"plugins"`
	SourceStructure SourceStructure  `json:"sourceStructure"`
}

// IsMultiModule reports whether the project declares modules
func (a *ProjectAnalysis) IsMultiModule() bool {
	return a.ProjectType == "multi-module"
}

// AnalyzeProject reads the pom.xml at projectPath and its modules
func AnalyzeProject(projectPath string) (*ProjectAnalysis, error) {
	if _, err := os.Stat(projectPath); err != nil {
		return nil, fmt.Errorf("Project directory does not exist: %s", projectPath)
	}
	pomPath := filepath.Join(projectPath, PomFileName)
	if _, err := os.Stat(pomPath); err != nil {
		return nil, fmt.Errorf("No pom.xml found in: %s", projectPath)
	}

	root, err := ReadPOM(pomPath)
	if err != nil {
		return nil, err
	}

	analysis := &ProjectAnalysis{
		ProjectPath:  projectPath,
		ProjectType:  "single-module",
		GroupID:      root.EffectiveGroupID(),
		ArtifactID:   root.ArtifactID,
		Version:      root.EffectiveVersion(),
		Packaging:    root.EffectivePackaging(),
		Modules:      []ModuleInfo{},
		Dependencies: []DependencyInfo{},
		Plugins:      []string{},
	}

	if len(root.Modules) > 0 {
		analysis.ProjectType = "multi-module"
		analysis.ModuleCount = len(root.Modules)
		for _, name := range root.Modules {
			if info, ok := analyzeModule(projectPath, name); ok {
				analysis.Modules = append(analysis.Modules, info)
			}
		}
	}

	for _, dep := range root.Dependencies {
		version := dep.Version
		if version == "" {
			version = "inherited"
		}
		analysis.Dependencies = append(analysis.Dependencies, DependencyInfo{
			GroupID:    dep.GroupID,
			ArtifactID: dep.ArtifactID,
			Version:    version,
			Scope:      dep.EffectiveScope(),
		})
	}
	analysis.DependencyCount = len(analysis.Dependencies)

	for _, plugin := range root.Plugins() {
		analysis.Plugins = append(analysis.Plugins, plugin.ArtifactID)
	}
	analysis.PluginCount = len(analysis.Plugins)

	analysis.SourceStructure = analyzeSourceStructure(projectPath)
	return analysis, nil
}

// analyzeModule skips modules without a pom.xml
func analyzeModule(projectPath, name string) (ModuleInfo, bool) {
	modulePath := filepath.Join(projectPath, name)
	pomPath := filepath.Join(modulePath, PomFileName)
	if !exists(pomPath) {
		return ModuleInfo{}, false
	}

	module, err := ReadPOM(pomPath)
	if err != nil {
		return ModuleInfo{Name: name, Error: err.Error(), InternalDependencies: []string{}}, true
	}

	info := ModuleInfo{
		Name:                 name,
		ArtifactID:           module.ArtifactID,
		Packaging:            module.EffectivePackaging(),
		DependencyCount:      len(module.Dependencies),
		InternalDependencies: []string{},
		HasMainSources:       exists(filepath.Join(modulePath, "src", "main", "java")),
		HasTestSources:       exists(filepath.Join(modulePath, "src", "test", "java")),
	}

	groupID := module.EffectiveGroupID()
	for _, dep := range module.Dependencies {
		if groupID != "" && dep.GroupID == groupID {
			info.InternalDependencies = append(info.InternalDependencies, dep.ArtifactID)
		}
	}
	return info, true
}

func analyzeSourceStructure(projectPath string) SourceStructure {
	mainJava := filepath.Join(projectPath, "src", "main", "java")
	testJava := filepath.Join(projectPath, "src", "test", "java")
	return SourceStructure{
		HasMainJava:      exists(mainJava),
		HasMainResources: exists(filepath.Join(projectPath, "src", "main", "resources")),
		HasTestJava:      exists(testJava),
		HasTestResources: exists(filepath.Join(projectPath, "src", "test", "resources")),
		MainJavaFiles:    countJavaFiles(mainJava),
		TestJavaFiles:    countJavaFiles(testJava),
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func countJavaFiles(root string) int {
	count := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".java") {
			count++
		}
		return nil
	})
	return count
}
