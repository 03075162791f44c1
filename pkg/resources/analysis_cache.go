// Package resources defines the read-only resources served through
// resources/read.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/uritemplate"
)

// AnalysisCacheURI is the URI template of the analysis cache resource
const AnalysisCacheURI = "cache://analysis/{projectPath}"

var analysisCacheTemplate = uritemplate.MustCompile(AnalysisCacheURI)

// URIFor returns the URI that reads the cached analysis of projectPath
func URIFor(projectPath string) string {
	// projectPath is the only placeholder, so Expand cannot fail
	uri, _ := analysisCacheTemplate.Expand(map[string]string{"projectPath": cache.Key(projectPath)})
	return uri
}

// ErrProjectPathRequired is returned when the URI carries no project path
var ErrProjectPathRequired = errors.New("projectPath parameter is required")

// CacheMiss is returned when no analysis is cached for the project
type CacheMiss struct {
	Cached  bool   `json:"cached"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// CacheHit carries a cached analysis and its age
type CacheHit struct {
	Cached      bool            `json:"cached"`
	ProjectPath string          `json:"projectPath"`
	CachedAt    string          `json:"cachedAt"`
	AgeMinutes  int64           `json:"ageMinutes"`
	IsStale     bool            `json:"isStale"`
	Data        json.RawMessage `json:"data"`
}

// AnalysisCache exposes cached analyze-maven-project results
type AnalysisCache struct {
	cache  *cache.Cache
	logger logging.Logger
}

// NewAnalysisCache creates the resource over c
func NewAnalysisCache(c *cache.Cache, logger logging.Logger) *AnalysisCache {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AnalysisCache{cache: c, logger: logger}
}

func (r *AnalysisCache) URI() string      { return AnalysisCacheURI }
func (r *AnalysisCache) Name() string     { return "analysis-cache" }
func (r *AnalysisCache) MimeType() string { return "application/json" }

func (r *AnalysisCache) Description() string {
	return "Cached Maven project analysis results to avoid re-running expensive operations"
}

// Read looks up the analysis for params["projectPath"]. Percent-encoded
// paths are decoded first.
func (r *AnalysisCache) Read(ctx context.Context, params map[string]string) (interface{}, error) {
	projectPath := params["projectPath"]
	if strings.Contains(projectPath, "%") {
		if decoded, err := url.PathUnescape(projectPath); err == nil {
			projectPath = decoded
		}
	}
	if projectPath == "" {
		return nil, ErrProjectPathRequired
	}

	logging.FromContext(ctx, r.logger).Info("Reading analysis cache", logging.Project(cache.Key(projectPath)))

	entry, ok, err := r.cache.Get(ctx, projectPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &CacheMiss{
			Cached:  false,
			Message: "No cached analysis found for: " + projectPath,
			Hint:    "Run analyze-maven-project tool first",
		}, nil
	}

	now := r.cache.Now()
	return &CacheHit{
		Cached:      true,
		ProjectPath: projectPath,
		CachedAt:    entry.CachedAt.UTC().Format(time.RFC3339),
		AgeMinutes:  int64(entry.Age(now) / time.Minute),
		IsStale:     entry.IsStale(now, r.cache.MaxAge()),
		Data:        entry.Data,
	}, nil
}
