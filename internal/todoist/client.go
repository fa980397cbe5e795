// Package todoist is a minimal client for the Todoist REST v2 API, scoped to
// what a digest run needs: the active task list and the project table.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production REST v2 endpoint.
const DefaultBaseURL = "https://api.todoist.com/rest/v2"

const defaultTimeout = 20 * time.Second

// Client talks to the Todoist REST v2 API. The bearer credential rides on an
// oauth2 transport, so every request carries the Authorization header without
// per-call plumbing.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a Todoist client around httpClient. A nil httpClient gets
// the default request timeout; an empty baseURL gets the production endpoint.
func NewClient(httpClient *http.Client, token, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	authed := *httpClient
	authed.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(token)}),
		Base:   httpClient.Transport,
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{client: &authed, baseURL: baseURL}
}

// ListTasks fetches all active tasks visible to the credential.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.getJSON(ctx, "/tasks", &tasks); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return tasks, nil
}

// ListProjects fetches the project table.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.getJSON(ctx, "/projects", &projects); err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	return projects, nil
}

// FetchDigest performs the two reads a digest needs, in order: tasks, then
// projects. Tasks are filtered to the digest label and projects indexed by
// id. The first failure aborts; nothing is retried.
func (c *Client) FetchDigest(ctx context.Context) ([]Task, ProjectIndex, error) {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return nil, nil, err
	}

	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, nil, err
	}

	return FilterByLabel(tasks, TargetLabels()), BuildProjectIndex(projects), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d (%s)", resp.StatusCode, compactBody(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func compactBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "no output"
	}
	const maxLen = 280
	if len(trimmed) <= maxLen {
		return trimmed
	}
	return trimmed[:maxLen] + "..."
}
