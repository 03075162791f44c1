package docs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeJavaDoc(t *testing.T) {
	root := newSources(t)

	report, err := AnalyzeJavaDoc(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalFiles)
	assert.Equal(t, 3, report.TotalClasses)
	assert.Equal(t, 2, report.UndocumentedClasses)
	assert.Equal(t, 4, report.TotalMethods)
	assert.Equal(t, 2, report.UndocumentedMethods)
	assert.Equal(t, 3, report.TotalFields)
	assert.Equal(t, 1, report.UndocumentedFields)
	assert.Equal(t, 10, report.Total())
	assert.Equal(t, 5, report.Documented())
	assert.InDelta(t, 50.0, report.Coverage(), 0.001)

	require.Len(t, report.MissingDocs, 4)
	var elements []string
	for _, doc := range report.MissingDocs {
		elements = append(elements, doc.Type+" "+doc.Element)
	}
	assert.ElementsMatch(t, []string{
		"class Line",
		"class Pricing",
		"method size()",
		"method price(String)",
	}, elements)
}

func TestSuggestedDocs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main/java/a/Port.java", `package a;
public interface Port {
    public String send(String topic, byte[] body) throws java.io.IOException;
    public void close();
}`)

	report, err := AnalyzeJavaDoc(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.MissingDocs, 3)

	assert.Equal(t, "/**\n * Port interface.\n *\n * <p>TODO: Add detailed description\n */", report.MissingDocs[0].SuggestedDoc)
	assert.Equal(t, "send(String, byte[])", report.MissingDocs[1].Element)
	assert.Equal(t, `/**
 * send.
 *
 * <p>TODO: Add detailed description
 *
 * @param topic TODO: describe parameter
 * @param body TODO: describe parameter
 * @return TODO: describe return value
 * @throws java.io.IOException TODO: describe exception
 */`, report.MissingDocs[1].SuggestedDoc)
	assert.NotContains(t, report.MissingDocs[2].SuggestedDoc, "@return")
}

func TestAnalyzeJavaDocEmptyProject(t *testing.T) {
	report, err := AnalyzeJavaDoc(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total())
	assert.InDelta(t, 100.0, report.Coverage(), 0.001)
}
