package docs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIDocs(t *testing.T) {
	root := newSources(t)

	doc, err := GenerateAPIDocs(context.Background(), root, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "# API Documentation\n"))
	assert.Contains(t, doc, "### com.shop.cart\n\n- [Cart](#cart)\n")
	assert.Contains(t, doc, "- [Pricing](#pricing)\n")
	assert.NotContains(t, doc, "Line")
	assert.NotContains(t, doc, "CartTest")

	assert.Less(t, strings.Index(doc, "## Package: `com.shop.cart`"), strings.Index(doc, "## Package: `com.shop.pricing`"))
	assert.Contains(t, doc, "### Cart\n\n**Type:** Class\n\nShopping cart.\n\n#### Methods\n")
	assert.Contains(t, doc, "```java\nvoid add(String sku, int qty) throws CartFullException\n```\n\nAdds an item.\n")
	assert.Contains(t, doc, "- `sku` (String): TODO: describe parameter\n")
	assert.Contains(t, doc, "**Returns:** `int` - TODO: describe return value")
	assert.Contains(t, doc, "- `CartFullException`: TODO: describe exception\n")
	assert.NotContains(t, doc, "reset")
	assert.Contains(t, doc, "**Type:** Interface")
	assert.Contains(t, doc, "long price(String sku)")
}

func TestGenerateAPIDocsPackageFilter(t *testing.T) {
	root := newSources(t)

	doc, err := GenerateAPIDocs(context.Background(), root, "com.shop.pricing")
	require.NoError(t, err)

	assert.Contains(t, doc, "## Package: `com.shop.pricing`")
	assert.NotContains(t, doc, "com.shop.cart")
}

func TestAPIMethodSignature(t *testing.T) {
	m := apiMethod{Name: "ping", ReturnType: "void"}
	assert.Equal(t, "void ping()", m.Signature())
}
