package main

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/config"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			CacheBackend:  "memory",
			CacheMaxAge:   time.Hour,
			TraceExporter: "none",
			MavenBin:      "mvn",
		},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func call(t *testing.T, a *app, line string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(a.server.HandleMessage(context.Background(), []byte(line)), &out))
	return out
}

func TestAppInitialize(t *testing.T) {
	a := newTestApp(t, testConfig())

	resp := call(t, a, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	result := resp["result"].(map[string]interface{})
	assert.Equal(t, "sdlc-tools-mcp-server", result["serverName"])
	assert.Equal(t, "2.0.0", result["serverVersion"])
	assert.Equal(t, "0.1.0", result["protocolVersion"])

	info := result["serverInfo"].(map[string]interface{})
	assert.Contains(t, info["description"], "Confluence documentation")
	assert.Equal(t, map[string]interface{}{"tools": true, "resources": true, "prompts": true}, info["capabilities"])
	assert.Len(t, info["integrations"], 3)
	assert.Len(t, info["sdlcPersonas"], 6)
}

func TestAppRegistersCapabilities(t *testing.T) {
	a := newTestApp(t, testConfig())
	call(t, a, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	toolsResp := call(t, a, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	tools := toolsResp["result"].(map[string]interface{})["tools"].([]interface{})
	assert.Len(t, tools, 16)
	assert.Equal(t, "analyze-maven-project", tools[0].(map[string]interface{})["name"])

	resourcesResp := call(t, a, `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`)
	resources := resourcesResp["result"].(map[string]interface{})["resources"].([]interface{})
	require.Len(t, resources, 1)
	assert.Equal(t, "cache://analysis/{projectPath}", resources[0].(map[string]interface{})["uri"])

	promptsResp := call(t, a, `{"jsonrpc":"2.0","id":4,"method":"prompts/list"}`)
	prompts := promptsResp["result"].(map[string]interface{})["prompts"].([]interface{})
	require.Len(t, prompts, 1)
	assert.Equal(t, "sdlc-full-workflow", prompts[0].(map[string]interface{})["name"])
}

func TestAppCachesAnalysisForResource(t *testing.T) {
	a := newTestApp(t, testConfig())
	require.NoError(t, a.cache.Put(context.Background(), "/work/shop", map[string]string{"artifactId": "shop"}))
	call(t, a, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	resp := call(t, a, `{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"cache://analysis//work/shop"}}`)
	contents := resp["result"].(map[string]interface{})["contents"].([]interface{})
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(map[string]interface{})["text"], `"cached":true`)
}

func TestAppRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*config.ServerConfig){
		"cache backend":  func(sc *config.ServerConfig) { sc.CacheBackend = "memcached" },
		"trace exporter": func(sc *config.ServerConfig) { sc.TraceExporter = "zipkin" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg.Server)
			_, err := newApp(context.Background(), cfg, logging.Nop())
			assert.Error(t, err)
		})
	}
}

func TestOptionsApplyOnlyChangedFlags(t *testing.T) {
	opts := &options{metricsAddr: ":9100", cacheBackend: "redis", redisAddr: "redis:6379", traceExporter: "noop"}
	sc := config.ServerConfig{CacheBackend: "memory", RedisAddr: "localhost:6379", TraceExporter: "none"}

	changed := map[string]bool{"metrics-addr": true, "cache-backend": true}
	opts.apply(func(name string) bool { return changed[name] }, &sc)

	assert.Equal(t, ":9100", sc.MetricsAddr)
	assert.Equal(t, "redis", sc.CacheBackend)
	assert.Equal(t, "localhost:6379", sc.RedisAddr)
	assert.Equal(t, "none", sc.TraceExporter)
}

func TestRootCommandRejectsBadLogFormat(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--log-format", "xml"})
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"log-level", "log-format", "metrics-addr", "trace-exporter", "trace-endpoint", "cache-backend", "redis-addr"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "2.0.0", cmd.Version)
}
