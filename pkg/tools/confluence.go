package tools

import (
	"context"

	"github.com/sdlc-tools/mcp-server/pkg/confluence"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

const defaultConfluenceLimit = 25

// ConfluenceAuth overrides the configured Confluence connection per call
type ConfluenceAuth struct {
	ConfluenceURL string `json:"confluenceUrl,omitempty" jsonschema_description:"Confluence instance URL (e.g. https://your-domain.atlassian.net/wiki). Optional if configured via environment or application.properties"`
	Email         string `json:"email,omitempty" jsonschema_description:"User email for authentication. Optional if configured via environment or application.properties"`
	APIToken      string `json:"apiToken,omitempty" jsonschema_description:"Confluence API token. Optional if configured via environment or application.properties"`
}

func (ts *Toolset) confluenceClient(auth ConfluenceAuth) (*confluence.Client, error) {
	creds, err := ts.config.ConfluenceCredentials(auth.ConfluenceURL, auth.Email, auth.APIToken)
	if err != nil {
		return nil, err
	}
	return confluence.NewClient(creds.URL, creds.Email, creds.APIToken, ts.atlassianOptions()...), nil
}

// PageSummary is one row of a search result
type PageSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Space string `json:"space,omitempty"`
	URL   string `json:"url,omitempty"`
}

// PageDetail is a single page with its storage body
type PageDetail struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Space   string `json:"space,omitempty"`
	Version int    `json:"version"`
	Body    string `json:"body"`
	URL     string `json:"url,omitempty"`
}

func spaceKey(c *confluence.Content) string {
	if c.Space == nil {
		return ""
	}
	return c.Space.Key
}

type confluenceSearchArgs struct {
	ConfluenceAuth
	CQL   string `json:"cql" jsonschema_description:"CQL query (e.g. 'space = DEV AND type = page')"`
	Limit int    `json:"limit,omitempty" jsonschema:"minimum=1,default=25"`
}

// ConfluenceSearchResult is returned by confluence-search-pages
type ConfluenceSearchResult struct {
	Success bool          `json:"success"`
	CQL     string        `json:"cql"`
	Size    int           `json:"size"`
	Pages   []PageSummary `json:"pages"`
}

func (ts *Toolset) confluenceSearch(ctx context.Context, args confluenceSearchArgs) (interface{}, error) {
	if args.Limit <= 0 {
		args.Limit = defaultConfluenceLimit
	}
	client, err := ts.confluenceClient(args.ConfluenceAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Searching Confluence pages", logging.String("cql", args.CQL))
	found, err := client.Search(ctx, args.CQL, args.Limit)
	if err != nil {
		return nil, err
	}

	result := &ConfluenceSearchResult{
		Success: true,
		CQL:     args.CQL,
		Size:    found.Size,
		Pages:   make([]PageSummary, 0, len(found.Results)),
	}
	for i := range found.Results {
		page := &found.Results[i]
		result.Pages = append(result.Pages, PageSummary{
			ID:    page.ID,
			Title: page.Title,
			Type:  page.Type,
			Space: spaceKey(page),
			URL:   client.PageURL(page),
		})
	}
	return result, nil
}

type confluenceGetArgs struct {
	ConfluenceAuth
	PageID string `json:"pageId" jsonschema_description:"Confluence page ID"`
	Expand string `json:"expand,omitempty" jsonschema_description:"Fields to expand (default: body.storage,version,space)"`
}

// ConfluencePageResult is returned by confluence-get-page
type ConfluencePageResult struct {
	Success bool       `json:"success"`
	Page    PageDetail `json:"page"`
}

func (ts *Toolset) confluenceGetPage(ctx context.Context, args confluenceGetArgs) (interface{}, error) {
	if args.Expand == "" {
		args.Expand = confluence.DefaultExpand
	}
	client, err := ts.confluenceClient(args.ConfluenceAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Getting Confluence page", logging.String("page", args.PageID))
	page, err := client.GetPage(ctx, args.PageID, args.Expand)
	if err != nil {
		return nil, err
	}

	detail := PageDetail{
		ID:    page.ID,
		Title: page.Title,
		Space: spaceKey(page),
		Body:  page.StorageValue(),
		URL:   client.PageURL(page),
	}
	if page.Version != nil {
		detail.Version = page.Version.Number
	}
	return &ConfluencePageResult{Success: true, Page: detail}, nil
}

type confluenceCreateArgs struct {
	ConfluenceAuth
	SpaceKey string `json:"spaceKey" jsonschema_description:"Space key (e.g. 'DEV')"`
	Title    string `json:"title" jsonschema_description:"Page title"`
	Content  string `json:"content" jsonschema_description:"Page content in Confluence storage format (HTML)"`
	ParentID string `json:"parentId,omitempty" jsonschema_description:"Optional: parent page ID"`
}

// ConfluenceCreateResult is returned by confluence-create-page
type ConfluenceCreateResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
}

func (ts *Toolset) confluenceCreatePage(ctx context.Context, args confluenceCreateArgs) (interface{}, error) {
	client, err := ts.confluenceClient(args.ConfluenceAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Creating Confluence page",
		logging.String("space", args.SpaceKey),
		logging.String("title", args.Title),
	)
	page, err := client.CreatePage(ctx, confluence.PageInput{
		SpaceKey: args.SpaceKey,
		Title:    args.Title,
		Content:  args.Content,
		ParentID: args.ParentID,
	})
	if err != nil {
		return nil, err
	}

	return &ConfluenceCreateResult{
		Success: true,
		ID:      page.ID,
		Title:   page.Title,
		URL:     client.PageURL(page),
	}, nil
}
