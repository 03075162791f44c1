// Package maven reads Maven project models, analyses projects and their
// dependencies, and runs an allow-listed set of Maven goals.
package maven

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// PomFileName is the Maven project descriptor
const PomFileName = "pom.xml"

// Project is the subset of a pom.xml model the tools read
type Project struct {
	XMLName      xml.Name     `xml:"project"`
	Parent       *Parent      `xml:"parent"`
	GroupID      string       `xml:"groupId"`
	ArtifactID   string       `xml:"artifactId"`
	Version      string       `xml:"version"`
	Packaging    string       `xml:"packaging"`
	Name         string       `xml:"name"`
	Description  string       `xml:"description"`
	Licenses     []License    `xml:"licenses>license"`
	Properties   Properties   `xml:"properties"`
	Modules      []string     `xml:"modules>module"`
	Dependencies []Dependency `xml:"dependencies>dependency"`
	Build        *Build       `xml:"build"`
}

// Parent is the parent coordinate of a project
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// License is a declared project license
type License struct {
	Name string `xml:"name"`
	URL  string `xml:"url"`
}

// Properties holds the <properties> block, keyed by element name
type Properties map[string]string

// UnmarshalXML implements xml.Unmarshaler
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	props := Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &el); err != nil {
				return err
			}
			props[el.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			*p = props
			return nil
		}
	}
}

// Dependency is a declared dependency
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Scope      string      `xml:"scope"`
	Optional   bool        `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion removes a transitive dependency
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Build holds build plugins
type Build struct {
	Plugins []Plugin `xml:"plugins>plugin"`
}

// Plugin is a build plugin
type Plugin struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// EffectiveScope returns the scope, defaulting to compile
func (d Dependency) EffectiveScope() string {
	if d.Scope == "" {
		return "compile"
	}
	return d.Scope
}

// EffectivePackaging returns the packaging, defaulting to jar
func (p *Project) EffectivePackaging() string {
	if p.Packaging == "" {
		return "jar"
	}
	return p.Packaging
}

// EffectiveGroupID returns the groupId, inherited from the parent when absent
func (p *Project) EffectiveGroupID() string {
	if p.GroupID == "" && p.Parent != nil {
		return p.Parent.GroupID
	}
	return p.GroupID
}

// EffectiveVersion returns the version, inherited from the parent when absent
func (p *Project) EffectiveVersion() string {
	if p.Version == "" && p.Parent != nil {
		return p.Parent.Version
	}
	return p.Version
}

// JavaVersion returns maven.compiler.source, then maven.compiler.target,
// defaulting to 17
func (p *Project) JavaVersion() string {
	for _, key := range []string{"maven.compiler.source", "maven.compiler.target"} {
		if v := p.Properties[key]; v != "" {
			return v
		}
	}
	return "17"
}

// Plugins returns the build plugins, or nil
func (p *Project) Plugins() []Plugin {
	if p.Build == nil {
		return nil
	}
	return p.Build.Plugins
}

// ParsePOM decodes a pom.xml document
func ParsePOM(r io.Reader) (*Project, error) {
	var project Project
	if err := xml.NewDecoder(r).Decode(&project); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}
	return &project, nil
}

// ReadPOM reads and decodes a pom.xml file
func ReadPOM(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	project, err := ParsePOM(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return project, nil
}
