// Package confluence is a client for the Confluence Cloud REST API.
package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sdlc-tools/mcp-server/pkg/atlassian"
)

const (
	apiPrefix = "/rest/api/content"

	// DefaultExpand is requested when GetPage is called without expand
	DefaultExpand = "body.storage,version,space"
)

// Space is a Confluence space
type Space struct {
	ID   int64  `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// Version is a content version
type Version struct {
	Number int    `json:"number"`
	When   string `json:"when,omitempty"`
}

// Storage is a body in storage representation
type Storage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// Body holds the expanded content body
type Body struct {
	Storage *Storage `json:"storage,omitempty"`
}

// Links are the _links of a content item
type Links struct {
	WebUI string `json:"webui,omitempty"`
	Base  string `json:"base,omitempty"`
	Self  string `json:"self,omitempty"`
}

// Content is a page or blog post
type Content struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Status  string   `json:"status,omitempty"`
	Title   string   `json:"title"`
	Space   *Space   `json:"space,omitempty"`
	Version *Version `json:"version,omitempty"`
	Body    *Body    `json:"body,omitempty"`
	Links   Links    `json:"_links"`
}

// StorageValue returns the storage body or ""
func (c *Content) StorageValue() string {
	if c.Body == nil || c.Body.Storage == nil {
		return ""
	}
	return c.Body.Storage.Value
}

// SearchResult is one page of content results
type SearchResult struct {
	Results []Content `json:"results"`
	Start   int       `json:"start"`
	Limit   int       `json:"limit"`
	Size    int       `json:"size"`
	Links   Links     `json:"_links"`
}

// PageInput describes a new page
type PageInput struct {
	SpaceKey string
	Title    string
	Content  string // storage format
	ParentID string
}

// Client talks to one Confluence site
type Client struct {
	api *atlassian.Client
}

// NewClient creates a Confluence client using basic auth email:apiToken
func NewClient(baseURL, email, apiToken string, opts ...atlassian.Option) *Client {
	return &Client{api: atlassian.NewClient("Confluence", baseURL, email, apiToken, opts...)}
}

// BaseURL returns the site URL
func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// PageURL returns the browser URL of content
func (c *Client) PageURL(content *Content) string {
	if content.Links.WebUI == "" {
		return ""
	}
	base := content.Links.Base
	if base == "" {
		base = c.api.BaseURL()
	}
	return base + content.Links.WebUI
}

// Search runs a CQL query
func (c *Client) Search(ctx context.Context, cql string, limit int) (*SearchResult, error) {
	query := url.Values{}
	query.Set("cql", cql)
	query.Set("limit", strconv.Itoa(limit))

	var result SearchResult
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPage fetches content by id
func (c *Client) GetPage(ctx context.Context, pageID, expand string) (*Content, error) {
	var query url.Values
	if expand != "" {
		query = url.Values{"expand": {expand}}
	}

	var content Content
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/"+url.PathEscape(pageID), query, nil, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// GetPageByTitle finds a page by exact title within a space
func (c *Client) GetPageByTitle(ctx context.Context, spaceKey, title string) (*Content, error) {
	result, err := c.Search(ctx, fmt.Sprintf("space=%s and title=%q", spaceKey, title), 1)
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("page %q not found in space %s", title, spaceKey)
	}
	return &result.Results[0], nil
}

// CreatePage creates a page, optionally under a parent
func (c *Client) CreatePage(ctx context.Context, in PageInput) (*Content, error) {
	body := map[string]interface{}{
		"type":  "page",
		"title": in.Title,
		"space": map[string]string{"key": in.SpaceKey},
		"body": map[string]interface{}{
			"storage": Storage{Value: in.Content, Representation: "storage"},
		},
	}
	if in.ParentID != "" {
		body["ancestors"] = []map[string]string{{"id": in.ParentID}}
	}

	var created Content
	if err := c.api.Do(ctx, http.MethodPost, apiPrefix, nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePage replaces title and body. currentVersion is the version being
// replaced; the request carries currentVersion+1.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, content string, currentVersion int) (*Content, error) {
	body := map[string]interface{}{
		"type":    "page",
		"title":   title,
		"version": Version{Number: currentVersion + 1},
		"body": map[string]interface{}{
			"storage": Storage{Value: content, Representation: "storage"},
		},
	}

	var updated Content
	if err := c.api.Do(ctx, http.MethodPut, apiPrefix+"/"+url.PathEscape(pageID), nil, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetChildPages lists the direct child pages of a page
func (c *Client) GetChildPages(ctx context.Context, pageID string, limit int) (*SearchResult, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	var result SearchResult
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/"+url.PathEscape(pageID)+"/child/page", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
