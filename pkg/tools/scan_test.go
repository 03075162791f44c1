package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityScanTool(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)
	writeFile(t, root, "src/main/java/com/example/Repo.java", `class Repo { String secret = "xyz"; }`+"\n")

	out, err := f.call(t, "security-scan", map[string]interface{}{"path": root})
	require.NoError(t, err)

	result, ok := out.(*SecurityResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, "full", result.ScanType)
	require.Len(t, result.AllFindings, 2)
	for _, finding := range result.AllFindings {
		assert.NotEmpty(t, finding.RemediationSteps)
	}

	out, err = f.call(t, "security-scan", map[string]interface{}{
		"path":                root,
		"scanType":            "code-only",
		"includeRemediations": false,
		"excludePatterns":     "Repo.java",
	})
	require.NoError(t, err)
	result = out.(*SecurityResult)
	assert.Empty(t, result.AllFindings)
	assert.Equal(t, "A", result.Summary.ScoreGrade)
}

func TestCodeQualityTool(t *testing.T) {
	f := newFixture(t, nil)
	root := newProject(t)

	out, err := f.call(t, "code-quality-check", map[string]interface{}{"path": root, "includeTests": true})
	require.NoError(t, err)

	result, ok := out.(*QualityResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Equal(t, "A", result.Summary.QualityGrade)

	_, err = f.call(t, "code-quality-check", map[string]interface{}{"path": root, "severity": "extreme"})
	assert.EqualError(t, err, "invalid severity: extreme")
}
