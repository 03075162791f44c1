package maven

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const rootPOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>shop</artifactId>
  <version>1.4.0</version>
  <packaging>pom</packaging>
  <modules>
    <module>core</module>
    <module>web</module>
    <module>ghost</module>
  </modules>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>2.0.9</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
      <exclusions>
        <exclusion><groupId>org.hamcrest</groupId><artifactId>hamcrest-core</artifactId></exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
    </dependency>
  </dependencies>
  <build>
    <plugins>
      <plugin><artifactId>maven-compiler-plugin</artifactId></plugin>
      <plugin><artifactId>jacoco-maven-plugin</artifactId></plugin>
    </plugins>
  </build>
</project>`

const corePOM = `<project>
  <parent><groupId>com.example</groupId><artifactId>shop</artifactId><version>1.4.0</version></parent>
  <artifactId>core</artifactId>
  <dependencies>
    <dependency><groupId>org.apache.commons</groupId><artifactId>commons-lang3</artifactId><version>3.13.0</version></dependency>
  </dependencies>
</project>`

const webPOM = `<project>
  <parent><groupId>com.example</groupId><artifactId>shop</artifactId><version>1.4.0</version></parent>
  <artifactId>web</artifactId>
  <packaging>war</packaging>
  <dependencies>
    <dependency><groupId>com.example</groupId><artifactId>core</artifactId></dependency>
  </dependencies>
</project>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newProject lays out a multi-module project in a temp dir
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pom.xml"), rootPOM)
	writeFile(t, filepath.Join(dir, "core", "pom.xml"), corePOM)
	writeFile(t, filepath.Join(dir, "core", "src", "main", "java", "com", "example", "Core.java"), "class Core {}")
	writeFile(t, filepath.Join(dir, "web", "pom.xml"), webPOM)
	writeFile(t, filepath.Join(dir, "web", "src", "test", "java", "WebTest.java"), "class WebTest {}")
	writeFile(t, filepath.Join(dir, "src", "main", "java", "App.java"), "class App {}")
	writeFile(t, filepath.Join(dir, "src", "main", "java", "util", "Util.java"), "class Util {}")
	writeFile(t, filepath.Join(dir, "src", "main", "resources", "app.properties"), "a=b")
	return dir
}

// fakeExecutor answers per goal
type fakeExecutor struct {
	outputs map[string]*InvocationResult
	err     error
	calls   []Invocation
}

func (f *fakeExecutor) Execute(ctx context.Context, inv Invocation) (*InvocationResult, error) {
	f.calls = append(f.calls, inv)
	if f.err != nil {
		return nil, f.err
	}
	if res, ok := f.outputs[strings.Join(inv.Goals, " ")]; ok {
		return res, nil
	}
	return &InvocationResult{ExitCode: 0}, nil
}
