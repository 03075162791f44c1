package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const cartSource = `package com.shop.cart;

/** Shopping cart. */
public class Cart {
    /** Maximum lines. */
    public static final int MAX = 50;
    public String owner;
    private int size;

    /**
     * Adds an item.
     */
    public void add(String sku, int qty) throws CartFullException {}

    public int size() { return size; }

    void reset() {}
}
`

const pricingSource = `package com.shop.pricing;

public interface Pricing {
    public long price(String sku);
}
`

// newSources lays out two main sources, one test source and one build output file
func newSources(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/main/java/com/shop/cart/Cart.java", cartSource)
	writeFile(t, root, "src/main/java/com/shop/pricing/Pricing.java", pricingSource)
	writeFile(t, root, "src/main/java/com/shop/cart/Line.java", "package com.shop.cart;\nclass Line {}\n")
	writeFile(t, root, "src/test/java/com/shop/cart/CartTest.java", "package com.shop.cart;\npublic class CartTest {}\n")
	writeFile(t, root, "target/generated/src/main/java/Gen.java", "public class Gen {}\n")
	return root
}
