package maven

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePOM(t *testing.T) {
	project, err := ParsePOM(strings.NewReader(rootPOM))
	require.NoError(t, err)

	assert.Equal(t, "com.example", project.GroupID)
	assert.Equal(t, "shop", project.ArtifactID)
	assert.Equal(t, "pom", project.EffectivePackaging())
	assert.Equal(t, []string{"core", "web", "ghost"}, project.Modules)
	require.Len(t, project.Dependencies, 3)
	assert.Equal(t, "compile", project.Dependencies[0].EffectiveScope())
	assert.Equal(t, "test", project.Dependencies[1].EffectiveScope())
	assert.Len(t, project.Dependencies[1].Exclusions, 1)
	require.Len(t, project.Plugins(), 2)
	assert.Equal(t, "jacoco-maven-plugin", project.Plugins()[1].ArtifactID)
}

func TestParsePOMInheritance(t *testing.T) {
	project, err := ParsePOM(strings.NewReader(webPOM))
	require.NoError(t, err)

	assert.Equal(t, "com.example", project.EffectiveGroupID())
	assert.Equal(t, "1.4.0", project.EffectiveVersion())
	assert.Equal(t, "war", project.EffectivePackaging())
	assert.Nil(t, project.Plugins())
}

func TestParsePOMInvalid(t *testing.T) {
	_, err := ParsePOM(strings.NewReader("<project><groupId>"))
	assert.Error(t, err)
}

func TestReadPOMMissing(t *testing.T) {
	_, err := ReadPOM(filepath.Join(t.TempDir(), "pom.xml"))
	assert.Error(t, err)
}

func TestParsePOMMetadata(t *testing.T) {
	project, err := ParsePOM(strings.NewReader(`<project>
  <artifactId>shop</artifactId>
  <description>Online shop</description>
  <licenses>
    <license><name>Apache License 2.0</name></license>
  </licenses>
  <properties>
    <maven.compiler.target> 21 </maven.compiler.target>
    <project.build.sourceEncoding>UTF-8</project.build.sourceEncoding>
  </properties>
</project>`))
	require.NoError(t, err)

	assert.Equal(t, "Online shop", project.Description)
	require.Len(t, project.Licenses, 1)
	assert.Equal(t, "Apache License 2.0", project.Licenses[0].Name)
	assert.Equal(t, "UTF-8", project.Properties["project.build.sourceEncoding"])
	assert.Equal(t, "21", project.JavaVersion())

	project.Properties["maven.compiler.source"] = "11"
	assert.Equal(t, "11", project.JavaVersion())

	bare, err := ParsePOM(strings.NewReader(webPOM))
	require.NoError(t, err)
	assert.Equal(t, "17", bare.JavaVersion())
}
