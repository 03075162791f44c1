package cache

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

const pomFileName = "pom.xml"

// Watcher invalidates cached analyses when a watched project's pom.xml changes
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	logger  logging.Logger

	mu       sync.Mutex
	projects map[string]struct{}
}

// NewWatcher creates a watcher for c
func NewWatcher(c *Cache, logger logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		cache:    c,
		watcher:  fw,
		logger:   logger,
		projects: make(map[string]struct{}),
	}, nil
}

// Watch registers a project directory. Watching the same directory twice is a no-op.
func (w *Watcher) Watch(projectPath string) error {
	dir := Key(projectPath)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.projects[dir]; ok {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.projects[dir] = struct{}{}
	return nil
}

// Watching reports whether projectPath is registered
func (w *Watcher) Watching(projectPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.projects[Key(projectPath)]
	return ok
}

// Run processes file events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("fsnotify error", logging.ErrorField(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if filepath.Base(ev.Name) != pomFileName {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}

	dir := filepath.Dir(ev.Name)
	if err := w.cache.Invalidate(ctx, dir); err != nil {
		w.logger.Warn("Failed to invalidate analysis", logging.Project(dir), logging.ErrorField(err))
		return
	}
	w.logger.Info("pom.xml changed, analysis invalidated", logging.Project(dir), logging.String("op", ev.Op.String()))
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
