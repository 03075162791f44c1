package resources

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/server"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newResource(t *testing.T) (*AnalysisCache, *cache.Cache, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	c := cache.New(cache.NewMemoryStore(), cache.WithClock(clk.Now))
	return NewAnalysisCache(c, nil), c, clk
}

func TestAnalysisCacheDescriptor(t *testing.T) {
	r, _, _ := newResource(t)
	assert.Equal(t, "cache://analysis/{projectPath}", r.URI())
	assert.Equal(t, "analysis-cache", r.Name())
	assert.Equal(t, "application/json", r.MimeType())
	assert.Equal(t, "Cached Maven project analysis results to avoid re-running expensive operations", r.Description())

	var _ server.Resource = r
}

func TestAnalysisCacheMiss(t *testing.T) {
	r, _, _ := newResource(t)

	out, err := r.Read(context.Background(), map[string]string{"projectPath": "/work/shop"})
	require.NoError(t, err)
	assert.Equal(t, &CacheMiss{
		Cached:  false,
		Message: "No cached analysis found for: /work/shop",
		Hint:    "Run analyze-maven-project tool first",
	}, out)
}

func TestAnalysisCacheHit(t *testing.T) {
	r, c, clk := newResource(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "/work/shop", map[string]string{"artifactId": "shop"}))

	clk.now = clk.now.Add(15 * time.Minute)
	out, err := r.Read(ctx, map[string]string{"projectPath": "/work/shop"})
	require.NoError(t, err)

	hit, ok := out.(*CacheHit)
	require.True(t, ok)
	assert.True(t, hit.Cached)
	assert.Equal(t, "/work/shop", hit.ProjectPath)
	assert.Equal(t, "2024-05-01T09:00:00Z", hit.CachedAt)
	assert.Equal(t, int64(15), hit.AgeMinutes)
	assert.False(t, hit.IsStale)
	assert.JSONEq(t, `{"artifactId":"shop"}`, string(hit.Data))

	clk.now = clk.now.Add(time.Hour)
	out, err = r.Read(ctx, map[string]string{"projectPath": "/work/shop"})
	require.NoError(t, err)
	assert.True(t, out.(*CacheHit).IsStale)
	assert.Equal(t, int64(75), out.(*CacheHit).AgeMinutes)
}

func TestAnalysisCacheDecodesEscapedPath(t *testing.T) {
	r, c, _ := newResource(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "/work/my shop", map[string]int{"moduleCount": 2}))

	out, err := r.Read(ctx, map[string]string{"projectPath": url.PathEscape("/work/my shop")})
	require.NoError(t, err)
	assert.Equal(t, "/work/my shop", out.(*CacheHit).ProjectPath)
}

func TestURIForRoundTrips(t *testing.T) {
	r, c, _ := newResource(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "/work/shop", map[string]int{"moduleCount": 3}))

	uri := URIFor("/work/shop/")
	assert.Equal(t, "cache://analysis//work/shop", uri)

	params, ok := analysisCacheTemplate.Match(uri)
	require.True(t, ok)
	out, err := r.Read(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "/work/shop", out.(*CacheHit).ProjectPath)
}

func TestAnalysisCacheRequiresPath(t *testing.T) {
	r, _, _ := newResource(t)
	_, err := r.Read(context.Background(), map[string]string{})
	assert.ErrorIs(t, err, ErrProjectPathRequired)
}

func TestAnalysisCacheThroughServer(t *testing.T) {
	r, c, _ := newResource(t)
	require.NoError(t, c.Put(context.Background(), "/work/shop", map[string]string{"artifactId": "shop"}))

	srv := server.New()
	require.NoError(t, srv.RegisterResource(r))

	ctx := context.Background()
	srv.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`))
	resp := srv.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"cache://analysis//work/shop"}}`))

	var decoded struct {
		Result struct {
			Contents []struct {
				URI      string `json:"uri"`
				MimeType string `json:"mimeType"`
				Text     string `json:"text"`
			} `json:"contents"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp, &decoded))
	require.Len(t, decoded.Result.Contents, 1)
	content := decoded.Result.Contents[0]
	assert.Equal(t, "cache://analysis//work/shop", content.URI)
	assert.Equal(t, "application/json", content.MimeType)

	var hit CacheHit
	require.NoError(t, json.Unmarshal([]byte(content.Text), &hit))
	assert.True(t, hit.Cached)
	assert.Equal(t, "/work/shop", hit.ProjectPath)
}
