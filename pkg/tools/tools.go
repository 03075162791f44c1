// Package tools defines the SDLC tools exposed through tools/call. Each
// tool decodes its arguments into a struct whose reflected JSON schema is
// advertised as the tool's input schema.
package tools

import (
	"context"
	"net/http"

	"github.com/sdlc-tools/mcp-server/pkg/atlassian"
	"github.com/sdlc-tools/mcp-server/pkg/cache"
	"github.com/sdlc-tools/mcp-server/pkg/config"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/maven"
	"github.com/sdlc-tools/mcp-server/pkg/scan"
	"github.com/sdlc-tools/mcp-server/pkg/server"
	"github.com/sdlc-tools/mcp-server/pkg/utils"
)

// Dependencies are the collaborators shared by the tools. Cache, Watcher,
// HTTPClient and RateLimiter are optional.
type Dependencies struct {
	Config      *config.Config
	Cache       *cache.Cache
	Watcher     *cache.Watcher
	Maven       maven.Executor
	HTTPClient  *http.Client
	RateLimiter *atlassian.RateLimiter
	Logger      logging.Logger
}

// Toolset builds the tools over one set of dependencies
type Toolset struct {
	config     *config.Config
	cache      *cache.Cache
	watcher    *cache.Watcher
	maven      maven.Executor
	analyzer   *maven.DependencyAnalyzer
	scanner    *scan.SecurityScanner
	httpClient *http.Client
	limiter    *atlassian.RateLimiter
	logger     logging.Logger
}

// New creates a Toolset
func New(deps Dependencies) *Toolset {
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &Toolset{
		config:     deps.Config,
		cache:      deps.Cache,
		watcher:    deps.Watcher,
		maven:      deps.Maven,
		analyzer:   maven.NewDependencyAnalyzer(deps.Maven),
		scanner:    scan.NewSecurityScanner(),
		httpClient: deps.HTTPClient,
		limiter:    deps.RateLimiter,
		logger:     deps.Logger,
	}
}

// Tools returns every tool in registration order
func (ts *Toolset) Tools() []server.Tool {
	return []server.Tool{
		newTool("analyze-maven-project", analyzeProjectDescription, ts.analyzeProject),
		newTool("analyze-dependencies", analyzeDependenciesDescription, ts.analyzeDependencies),
		newTool("run-maven-command", runCommandDescription, ts.runCommand),
		newTool("code-quality-check", qualityDescription, ts.checkQuality),
		newTool("security-scan", securityDescription, ts.securityScan),
		newTool("generate-documentation", documentationDescription, ts.generateDocumentation),
		newTool("suggest-implementation", suggestDescription, ts.suggestImplementation),
		newTool("implement-feature", implementFeatureDescription, ts.implementFeature),
		newTool("fix-bug", fixBugDescription, ts.fixBug),
		newTool("generate-tests", generateTestsDescription, ts.generateTests),
		newTool("jira-search-issues", "Search for JIRA issues using JQL (JIRA Query Language)", ts.jiraSearch),
		newTool("jira-get-issue", "Get detailed information about a specific JIRA issue by its key", ts.jiraGetIssue),
		newTool("jira-create-issue", "Create a new JIRA issue in a specified project", ts.jiraCreateIssue),
		newTool("confluence-search-pages", "Search for Confluence pages using CQL (Confluence Query Language)", ts.confluenceSearch),
		newTool("confluence-get-page", "Get detailed information about a specific Confluence page by its ID", ts.confluenceGetPage),
		newTool("confluence-create-page", "Create a new Confluence page in a specified space", ts.confluenceCreatePage),
	}
}

// Register adds every tool to srv
func (ts *Toolset) Register(srv *server.Server) error {
	for _, tool := range ts.Tools() {
		if err := srv.RegisterTool(tool); err != nil {
			return err
		}
	}
	return nil
}

// newTool wraps a typed tool body. The input schema is reflected from A and
// the raw argument map is decoded into A before fn runs.
func newTool[A any](name, description string, fn func(ctx context.Context, args A) (interface{}, error)) server.Tool {
	return server.NewTool(name, description, utils.MustGenerateJSONSchema(new(A)),
		func(ctx context.Context, raw map[string]interface{}) (interface{}, error) {
			var args A
			if err := utils.DecodeArguments(raw, &args); err != nil {
				return nil, err
			}
			return fn(ctx, args)
		})
}

func (ts *Toolset) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, ts.logger)
}

func (ts *Toolset) atlassianOptions() []atlassian.Option {
	opts := []atlassian.Option{atlassian.WithLogger(ts.logger)}
	if ts.httpClient != nil {
		opts = append(opts, atlassian.WithHTTPClient(ts.httpClient))
	}
	if ts.limiter != nil {
		opts = append(opts, atlassian.WithRateLimiter(ts.limiter))
	}
	return opts
}
