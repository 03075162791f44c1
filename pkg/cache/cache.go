// Package cache keeps Maven project analyses so that repeated tool calls and
// the analysis-cache resource avoid re-running expensive operations.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

// DefaultMaxAge is the age after which an entry is reported stale
const DefaultMaxAge = 60 * time.Minute

// Entry is one cached analysis
type Entry struct {
	ProjectPath string          `json:"projectPath"`
	CachedAt    time.Time       `json:"cachedAt"`
	Data        json.RawMessage `json:"data"`
}

// Age returns how long ago the entry was stored
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// IsStale reports whether the entry is older than maxAge
func (e Entry) IsStale(now time.Time, maxAge time.Duration) bool {
	return e.Age(now) > maxAge
}

// Store persists entries by key
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Cache is the analysis cache. Construct one with New and pass it to the
// components that need it.
type Cache struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
	logger logging.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithMaxAge sets the staleness threshold
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// New creates a cache over store
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		maxAge: DefaultMaxAge,
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key normalises a project path into an absolute cleaned path
func Key(projectPath string) string {
	if abs, err := filepath.Abs(projectPath); err == nil {
		return abs
	}
	return filepath.Clean(projectPath)
}

// MaxAge returns the staleness threshold
func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}

// Now returns the cache clock's current time
func (c *Cache) Now() time.Time {
	return c.now()
}

// Put stores data for projectPath, replacing any previous entry
func (c *Cache) Put(ctx context.Context, projectPath string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}

	key := Key(projectPath)
	entry := Entry{ProjectPath: key, CachedAt: c.now().UTC(), Data: raw}
	if err := c.store.Put(ctx, key, entry); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}

	c.logger.Debug("Analysis cached", logging.Project(key))
	return nil
}

// Get returns the entry for projectPath if present
func (c *Cache) Get(ctx context.Context, projectPath string) (Entry, bool, error) {
	key := Key(projectPath)
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return entry, ok, nil
}

// Invalidate removes the entry for projectPath
func (c *Cache) Invalidate(ctx context.Context, projectPath string) error {
	key := Key(projectPath)
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", key, err)
	}
	c.logger.Debug("Analysis invalidated", logging.Project(key))
	return nil
}

// Clear removes every entry
func (c *Cache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
