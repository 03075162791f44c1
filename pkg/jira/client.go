// Package jira is a client for the Jira Cloud REST API v3.
package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sdlc-tools/mcp-server/pkg/atlassian"
)

const apiPrefix = "/rest/api/3"

// Named is any Jira entity referenced by name, such as status or priority
type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// User is an assignee or reporter
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// IssueFields holds the commonly used issue fields
type IssueFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description,omitempty"`
	Status      *Named          `json:"status,omitempty"`
	Priority    *Named          `json:"priority,omitempty"`
	IssueType   *Named          `json:"issuetype,omitempty"`
	Assignee    *User           `json:"assignee,omitempty"`
	Reporter    *User           `json:"reporter,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	Created     string          `json:"created,omitempty"`
	Updated     string          `json:"updated,omitempty"`
}

// Issue is a Jira issue
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// SearchResult is one page of a JQL search
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// CreatedIssue identifies a newly created issue
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// IssueInput describes a new issue
type IssueInput struct {
	ProjectKey  string
	IssueType   string
	Summary     string
	Description string
}

// Comment is an issue comment
type Comment struct {
	ID      string `json:"id"`
	Self    string `json:"self"`
	Created string `json:"created,omitempty"`
}

// Transition is a workflow transition available on an issue
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Named  `json:"to"`
}

// Client talks to one Jira site
type Client struct {
	api *atlassian.Client
}

// NewClient creates a Jira client using basic auth email:apiToken
func NewClient(baseURL, email, apiToken string, opts ...atlassian.Option) *Client {
	return &Client{api: atlassian.NewClient("JIRA", baseURL, email, apiToken, opts...)}
}

// BaseURL returns the site URL
func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// SearchIssues runs a JQL query
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) (*SearchResult, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", strconv.Itoa(maxResults))

	var result SearchResult
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/search", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIssue fetches one issue by key
func (c *Client) GetIssue(ctx context.Context, issueKey string) (*Issue, error) {
	var issue Issue
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/issue/"+url.PathEscape(issueKey), nil, nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// CreateIssue creates an issue. A non-empty description is sent as ADF.
func (c *Client) CreateIssue(ctx context.Context, in IssueInput) (*CreatedIssue, error) {
	fields := map[string]interface{}{
		"project":   map[string]string{"key": in.ProjectKey},
		"issuetype": map[string]string{"name": in.IssueType},
		"summary":   in.Summary,
	}
	if in.Description != "" {
		fields["description"] = NewDocument(in.Description)
	}

	var created CreatedIssue
	body := map[string]interface{}{"fields": fields}
	if err := c.api.Do(ctx, http.MethodPost, apiPrefix+"/issue", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateIssue sets the given fields on an issue
func (c *Client) UpdateIssue(ctx context.Context, issueKey string, fields map[string]interface{}) error {
	body := map[string]interface{}{"fields": fields}
	return c.api.Do(ctx, http.MethodPut, apiPrefix+"/issue/"+url.PathEscape(issueKey), nil, body, nil)
}

// AddComment adds a comment, sent as ADF
func (c *Client) AddComment(ctx context.Context, issueKey, text string) (*Comment, error) {
	var comment Comment
	body := map[string]interface{}{"body": NewDocument(text)}
	if err := c.api.Do(ctx, http.MethodPost, apiPrefix+"/issue/"+url.PathEscape(issueKey)+"/comment", nil, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetTransitions lists the transitions available on an issue
func (c *Client) GetTransitions(ctx context.Context, issueKey string) ([]Transition, error) {
	var result struct {
		Transitions []Transition `json:"transitions"`
	}
	if err := c.api.Do(ctx, http.MethodGet, apiPrefix+"/issue/"+url.PathEscape(issueKey)+"/transitions", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Transitions, nil
}

// TransitionIssue moves an issue through the transition with the given id
func (c *Client) TransitionIssue(ctx context.Context, issueKey, transitionID string) error {
	body := map[string]interface{}{"transition": map[string]string{"id": transitionID}}
	return c.api.Do(ctx, http.MethodPost, apiPrefix+"/issue/"+url.PathEscape(issueKey)+"/transitions", nil, body, nil)
}
