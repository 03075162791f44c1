package tools

import (
	"context"

	"github.com/sdlc-tools/mcp-server/pkg/jira"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
)

const defaultJiraMaxResults = 50

// JiraAuth overrides the configured Jira connection per call
type JiraAuth struct {
	JiraURL  string `json:"jiraUrl,omitempty" jsonschema_description:"JIRA instance URL (e.g. https://your-domain.atlassian.net). Optional if configured via environment or application.properties"`
	Email    string `json:"email,omitempty" jsonschema_description:"User email for authentication. Optional if configured via environment or application.properties"`
	APIToken string `json:"apiToken,omitempty" jsonschema_description:"JIRA API token. Optional if configured via environment or application.properties"`
}

func (ts *Toolset) jiraClient(auth JiraAuth) (*jira.Client, error) {
	creds, err := ts.config.JiraCredentials(auth.JiraURL, auth.Email, auth.APIToken)
	if err != nil {
		return nil, err
	}
	return jira.NewClient(creds.URL, creds.Email, creds.APIToken, ts.atlassianOptions()...), nil
}

// IssueSummary is one row of a search result
type IssueSummary struct {
	Key       string `json:"key"`
	Summary   string `json:"summary"`
	Status    string `json:"status,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
	Priority  string `json:"priority,omitempty"`
	IssueType string `json:"issueType,omitempty"`
	Created   string `json:"created,omitempty"`
	Updated   string `json:"updated,omitempty"`
}

// IssueDetail is a single issue with its description as plain text
type IssueDetail struct {
	IssueSummary
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Reporter    string   `json:"reporter,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	URL         string   `json:"url"`
}

func namedValue(n *jira.Named) string {
	if n == nil {
		return ""
	}
	return n.Name
}

func displayName(u *jira.User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName
}

func summarizeIssue(issue jira.Issue) IssueSummary {
	f := issue.Fields
	return IssueSummary{
		Key:       issue.Key,
		Summary:   f.Summary,
		Status:    namedValue(f.Status),
		Assignee:  displayName(f.Assignee),
		Priority:  namedValue(f.Priority),
		IssueType: namedValue(f.IssueType),
		Created:   f.Created,
		Updated:   f.Updated,
	}
}

type jiraSearchArgs struct {
	JiraAuth
	JQL        string `json:"jql" jsonschema_description:"JQL query (e.g. 'project = PROJ AND status = Open')"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"minimum=1,default=50"`
}

// JiraSearchResult is returned by jira-search-issues
type JiraSearchResult struct {
	Success    bool           `json:"success"`
	JQL        string         `json:"jql"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Issues     []IssueSummary `json:"issues"`
}

func (ts *Toolset) jiraSearch(ctx context.Context, args jiraSearchArgs) (interface{}, error) {
	if args.MaxResults <= 0 {
		args.MaxResults = defaultJiraMaxResults
	}
	client, err := ts.jiraClient(args.JiraAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Searching JIRA issues", logging.String("jql", args.JQL))
	found, err := client.SearchIssues(ctx, args.JQL, args.MaxResults)
	if err != nil {
		return nil, err
	}

	result := &JiraSearchResult{
		Success:    true,
		JQL:        args.JQL,
		MaxResults: args.MaxResults,
		Total:      found.Total,
		Issues:     make([]IssueSummary, 0, len(found.Issues)),
	}
	for _, issue := range found.Issues {
		result.Issues = append(result.Issues, summarizeIssue(issue))
	}
	return result, nil
}

type jiraGetArgs struct {
	JiraAuth
	IssueKey string `json:"issueKey" jsonschema_description:"JIRA issue key (e.g. 'PROJ-123')"`
}

// JiraIssueResult is returned by jira-get-issue
type JiraIssueResult struct {
	Success bool        `json:"success"`
	Issue   IssueDetail `json:"issue"`
}

func (ts *Toolset) jiraGetIssue(ctx context.Context, args jiraGetArgs) (interface{}, error) {
	client, err := ts.jiraClient(args.JiraAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Getting JIRA issue", logging.String("issue", args.IssueKey))
	issue, err := client.GetIssue(ctx, args.IssueKey)
	if err != nil {
		return nil, err
	}

	return &JiraIssueResult{
		Success: true,
		Issue: IssueDetail{
			IssueSummary: summarizeIssue(*issue),
			ID:           issue.ID,
			Description:  jira.PlainText(issue.Fields.Description),
			Reporter:     displayName(issue.Fields.Reporter),
			Labels:       issue.Fields.Labels,
			URL:          client.BaseURL() + "/browse/" + issue.Key,
		},
	}, nil
}

type jiraCreateArgs struct {
	JiraAuth
	ProjectKey  string `json:"projectKey" jsonschema_description:"Project key (e.g. 'PROJ')"`
	IssueType   string `json:"issueType" jsonschema_description:"Issue type (e.g. 'Bug', 'Task', 'Story')"`
	Summary     string `json:"summary" jsonschema_description:"Issue summary/title"`
	Description string `json:"description,omitempty" jsonschema_description:"Detailed description of the issue"`
}

// JiraCreateResult is returned by jira-create-issue
type JiraCreateResult struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
	ID      string `json:"id"`
	Self    string `json:"self"`
	URL     string `json:"url"`
}

func (ts *Toolset) jiraCreateIssue(ctx context.Context, args jiraCreateArgs) (interface{}, error) {
	client, err := ts.jiraClient(args.JiraAuth)
	if err != nil {
		return nil, err
	}

	ts.log(ctx).Info("Creating JIRA issue", logging.Project(args.ProjectKey))
	created, err := client.CreateIssue(ctx, jira.IssueInput{
		ProjectKey:  args.ProjectKey,
		IssueType:   args.IssueType,
		Summary:     args.Summary,
		Description: args.Description,
	})
	if err != nil {
		return nil, err
	}

	return &JiraCreateResult{
		Success: true,
		Key:     created.Key,
		ID:      created.ID,
		Self:    created.Self,
		URL:     client.BaseURL() + "/browse/" + created.Key,
	}, nil
}
