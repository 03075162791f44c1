package codegen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const npeTrace = `java.lang.NullPointerException: Cannot invoke "Item.price()"
	at com.shop.Cart.total(Cart.java:42)
	at com.shop.App.main(App.java:7)`

func TestParseStackTrace(t *testing.T) {
	assert.Equal(t, []StackFrame{
		{FullClass: "com.shop.Cart.total", File: "Cart.java", Line: 42},
		{FullClass: "com.shop.App.main", File: "App.java", Line: 7},
	}, ParseStackTrace(npeTrace))
	assert.Empty(t, ParseStackTrace(""))
}

func TestIdentifyBugType(t *testing.T) {
	tests := []struct {
		description string
		trace       string
		want        string
	}{
		{"Checkout fails", npeTrace, "NullPointerException"},
		{"null pointer on login", "", "NullPointerException"},
		{"index out of bounds in paging", "", "ArrayIndexOutOfBoundsException"},
		{"ClassCastException in mapper", "", "ClassCastException"},
		{"ConcurrentModificationException while pruning", "", "ConcurrentModificationException"},
		{"StackOverflowError on deep trees", "", "StackOverflowError"},
		{"service runs out of memory", "", "OutOfMemoryError"},
		{"deadlock between workers", "", "Deadlock"},
		{"input stream not closed", "", "ResourceLeak"},
		{"total is wrong", "", "LogicError"},
		{"it broke", "", "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IdentifyBugType(tt.description, tt.trace), tt.description)
	}
}

func newBuggyProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/main/java/com/shop/Cart.java", `package com.shop;

public class Cart {
    public int total() { return items.get(0).price(); }
}
`)
	writeFile(t, root, "src/main/java/com/shop/PriceCalculator.java", `package com.shop;

public class PriceCalculator {
    int apply(int price) { return price; }
}
`)
	writeFile(t, root, "src/main/java/com/shop/Loader.java", `package com.shop;

class Loader {
    byte[] load(String path) throws Exception {
        InputStream in = new FileInputStream(path);
        return in.readAllBytes();
    }
}
`)
	return root
}

func TestAnalyzeBugFromStackTrace(t *testing.T) {
	root := newBuggyProject(t)
	cart := filepath.Join(root, "src/main/java/com/shop/Cart.java")

	a, err := AnalyzeBug(context.Background(), BugReport{
		ProjectPath:  root,
		Description:  "Checkout\ncrashes",
		StackTrace:   npeTrace,
		GenerateTest: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "NullPointerException", a.BugType)
	assert.Len(t, a.StackFrames, 2)
	assert.Equal(t, []BugLocation{{File: cart, Line: 42, Confidence: "high", Source: "stackTrace"}}, a.PotentialLocations)
	assert.Equal(t, []BugPattern{
		{File: cart, Description: "Missing null check before .get()", Severity: "high"},
		{File: cart, Description: "Method calls without null safety", Severity: "medium"},
	}, a.DetectedPatterns)

	require.Len(t, a.FixSuggestions, 4)
	assert.Equal(t, "Add null checks", a.FixSuggestions[0].Title)
	assert.Equal(t, "Fix pattern: Missing null check before .get()", a.FixSuggestions[2].Title)
	assert.Equal(t, "See location: "+cart, a.FixSuggestions[2].Example)

	require.NotNil(t, a.RegressionTest)
	assert.Equal(t, `@Test
void testBugFix_NullPointerException() {
    // Regression test for: Checkout crashes
    // Bug type: NullPointerException

    // Test with null input
    assertDoesNotThrow(() -> methodUnderTest(null));
}
`, a.RegressionTest.TestMethod)

	assert.Equal(t, BugSummary{
		BugType:             "NullPointerException",
		LocationsFound:      1,
		PatternsDetected:    2,
		FixSuggestionsCount: 4,
		Confidence:          "high",
	}, a.Summary)
}

func TestAnalyzeBugByKeyword(t *testing.T) {
	root := newBuggyProject(t)

	a, err := AnalyzeBug(context.Background(), BugReport{
		ProjectPath: root,
		Description: "Checkout total is wrong in PriceCalculator",
	})
	require.NoError(t, err)

	assert.Equal(t, "LogicError", a.BugType)
	assert.Equal(t, []BugLocation{{
		File:       filepath.Join(root, "src/main/java/com/shop/PriceCalculator.java"),
		Confidence: "medium",
		Source:     "keyword: PriceCalculator",
	}}, a.PotentialLocations)
	assert.Empty(t, a.DetectedPatterns)
	assert.Nil(t, a.RegressionTest)
	assert.Equal(t, "low", a.Summary.Confidence)
	assert.Equal(t, 1, a.Summary.FixSuggestionsCount)
}

func TestAnalyzeBugSpecifiedFile(t *testing.T) {
	root := newBuggyProject(t)
	loader := filepath.Join(root, "src/main/java/com/shop/Loader.java")

	a, err := AnalyzeBug(context.Background(), BugReport{
		ProjectPath:  root,
		Description:  "file handle not closed",
		AffectedFile: "src/main/java/com/shop/Loader.java",
		GenerateTest: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "ResourceLeak", a.BugType)
	assert.Equal(t, []BugLocation{{File: loader, Confidence: "high", Source: "specified"}}, a.PotentialLocations)
	assert.Equal(t, []BugPattern{{File: loader, Description: "File stream without try-with-resources", Severity: "high"}}, a.DetectedPatterns)
	assert.Equal(t, "medium", a.Summary.Confidence)
	assert.Contains(t, a.RegressionTest.TestMethod, "void testBugFix_ResourceLeak() {\n")
	assert.Contains(t, a.RegressionTest.TestMethod, "    assertNotNull(result);\n")
}

func TestAnalyzeBugIgnoresTryWithResources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Reader.java", `class Reader {
    void read(String p) throws Exception {
        try (InputStream in = new FileInputStream(p)) { in.read(); }
    }
}`)

	a, err := AnalyzeBug(context.Background(), BugReport{
		ProjectPath:  root,
		Description:  "resource leak",
		AffectedFile: "Reader.java",
	})
	require.NoError(t, err)
	assert.Empty(t, a.DetectedPatterns)
	assert.Equal(t, "low", a.Summary.Confidence)
}

func TestAnalyzeBugMissingProject(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	_, err := AnalyzeBug(context.Background(), BugReport{ProjectPath: missing, Description: "x"})
	assert.EqualError(t, err, "Project path does not exist: "+missing)
}
