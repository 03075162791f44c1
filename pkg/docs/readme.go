package docs

import (
	"fmt"
	"path/filepath"

	"github.com/sdlc-tools/mcp-server/pkg/maven"
)

type readmeData struct {
	Name        string
	Description string
	JavaVersion string
	GroupID     string
	ArtifactID  string
	Version     string
	Dir         string
	License     string
	HasTests    bool
	HasDocker   bool
}

// GenerateReadme renders a README for the Maven project at root
func GenerateReadme(root string) (string, error) {
	pomPath := filepath.Join(root, maven.PomFileName)
	if !exists(pomPath) {
		return "", fmt.Errorf("No pom.xml found at: %s", root)
	}
	project, err := maven.ReadPOM(pomPath)
	if err != nil {
		return "", err
	}

	data := readmeData{
		Name:        project.Name,
		Description: project.Description,
		JavaVersion: project.JavaVersion(),
		GroupID:     project.EffectiveGroupID(),
		ArtifactID:  project.ArtifactID,
		Version:     project.EffectiveVersion(),
		Dir:         filepath.Base(filepath.Clean(root)),
		HasTests:    exists(filepath.Join(root, "src", "test", "java")),
		HasDocker:   exists(filepath.Join(root, "Dockerfile")),
	}
	if data.Name == "" {
		data.Name = project.ArtifactID
	}
	if len(project.Licenses) > 0 {
		data.License = project.Licenses[0].Name
	}
	return render("readme.md.tmpl", data)
}
