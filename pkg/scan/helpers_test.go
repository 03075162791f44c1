package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const vulnerablePOM = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>billing</artifactId>
  <version>1.0.0</version>
  <dependencies>
    <dependency>
      <groupId>org.apache.logging.log4j</groupId>
      <artifactId>log4j-core</artifactId>
      <version>2.14.1</version>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>2.0.9</version>
    </dependency>
  </dependencies>
</project>
`

const accountDAO = `public class AccountDao {
    String password = "hunter2";
    void find(String id) throws Exception {
        stmt.executeQuery("SELECT * FROM account WHERE id=" + id);
    }
}
`

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newVulnerableProject lays out a project with one vulnerable dependency and
// one vulnerable source file; the copies under target/ must never be scanned
func newVulnerableProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "pom.xml", vulnerablePOM)
	writeFile(t, root, "src/main/java/com/example/AccountDao.java", accountDAO)
	writeFile(t, root, "target/generated-sources/Leak.java", `String apiKey = "abc123";`+"\n")
	return root
}
