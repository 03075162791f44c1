package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlc-tools/mcp-server/pkg/utils"
)

func TestWatcherInvalidatesOnPomChange(t *testing.T) {
	utils.VerifyNoGoroutineLeaks(t)
	dir := t.TempDir()
	pom := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(pom, []byte("<project/>"), 0o644))

	c := New(NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(c, nil)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Watch(dir))
	assert.True(t, w.Watching(dir))
	go w.Run(ctx)

	require.NoError(t, c.Put(ctx, dir, map[string]string{"artifactId": "demo"}))

	// unrelated files leave the entry alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi"), 0o644))
	time.Sleep(100 * time.Millisecond)
	_, ok, err := c.Get(ctx, dir)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(pom, []byte("<project><version>2</version></project>"), 0o644))

	assert.Eventually(t, func() bool {
		_, ok, err := c.Get(ctx, dir)
		return err == nil && !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	w, err := NewWatcher(New(NewMemoryStore()), nil)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}
