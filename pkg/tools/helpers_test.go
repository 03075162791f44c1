package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/config"
	"github.com/sdlc-tools/mcp-server/pkg/maven"
	"github.com/sdlc-tools/mcp-server/pkg/server"
)

const modulePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>orders</artifactId>
  <version>2.1.0</version>
  <packaging>pom</packaging>
  <modules>
    <module>api</module>
  </modules>
  <dependencies>
    <dependency>
      <groupId>org.apache.logging.log4j</groupId>
      <artifactId>log4j-core</artifactId>
      <version>2.14.1</version>
    </dependency>
  </dependencies>
</project>
`

const apiPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>com.example</groupId>
    <artifactId>orders</artifactId>
    <version>2.1.0</version>
  </parent>
  <artifactId>orders-api</artifactId>
</project>
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newProject lays out a two level Maven build with one main and one test source
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "pom.xml", modulePOM)
	writeFile(t, root, "api/pom.xml", apiPOM)
	writeFile(t, root, "src/main/java/com/example/Orders.java", "public class Orders {}\n")
	writeFile(t, root, "src/test/java/com/example/OrdersTest.java", "public class OrdersTest {}\n")
	return root
}

// recordingExecutor stands in for mvn
type recordingExecutor struct {
	mu      sync.Mutex
	calls   []maven.Invocation
	results map[string]*maven.InvocationResult
}

func (r *recordingExecutor) Execute(ctx context.Context, inv maven.Invocation) (*maven.InvocationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)
	if res, ok := r.results[strings.Join(inv.Goals, " ")]; ok {
		return res, nil
	}
	return &maven.InvocationResult{ExitCode: 0, Output: "[INFO] BUILD SUCCESS"}, nil
}

type fixture struct {
	toolset  *Toolset
	tools    map[string]server.Tool
	cache    *cache.Cache
	executor *recordingExecutor
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	f := &fixture{
		cache:    cache.New(cache.NewMemoryStore()),
		executor: &recordingExecutor{results: map[string]*maven.InvocationResult{}},
		tools:    map[string]server.Tool{},
	}
	f.toolset = New(Dependencies{
		Config: cfg,
		Cache:  f.cache,
		Maven:  f.executor,
	})
	for _, tool := range f.toolset.Tools() {
		f.tools[tool.Name()] = tool
	}
	return f
}

func (f *fixture) call(t *testing.T, name string, args map[string]interface{}) (interface{}, error) {
	t.Helper()
	tool, ok := f.tools[name]
	require.True(t, ok, "tool %s not registered", name)
	return tool.Execute(context.Background(), args)
}
