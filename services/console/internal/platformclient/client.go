package platformclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
)

// Client calls the platform service over HTTP. Operations never retry; a
// failure is classified and handed back to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a platform client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", "", payload, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// ListProjects returns the caller's projects, newest first.
func (c *Client) ListProjects(ctx context.Context, token string) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.doJSON(ctx, http.MethodGet, "/api/design/projects", token, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject persists a new project.
func (c *Client) CreateProject(ctx context.Context, token, typ, title string, content domain.ProjectContent) (domain.Project, error) {
	payload := map[string]any{"type": typ, "title": title, "content": content}
	var project domain.Project
	if err := c.doJSON(ctx, http.MethodPost, "/api/design/projects", token, payload, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// UpdateProject applies a partial update. Nil fields are left unchanged.
func (c *Client) UpdateProject(ctx context.Context, token, id string, title *string, content *domain.ProjectContent) (domain.Project, error) {
	payload := map[string]any{}
	if title != nil {
		payload["title"] = *title
	}
	if content != nil {
		payload["content"] = *content
	}
	var project domain.Project
	path := fmt.Sprintf("/api/design/projects/%s", id)
	if err := c.doJSON(ctx, http.MethodPut, path, token, payload, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project permanently.
func (c *Client) DeleteProject(ctx context.Context, token, id string) error {
	path := fmt.Sprintf("/api/design/projects/%s", id)
	return c.doJSON(ctx, http.MethodDelete, path, token, nil, nil)
}

// DuplicateProject is composed client-side: the platform has no copy
// primitive, so a duplicate is a fresh create carrying the source's type and
// content under a suffixed title.
func (c *Client) DuplicateProject(ctx context.Context, token string, source domain.Project) (domain.Project, error) {
	return c.CreateProject(ctx, token, source.Type, source.Title+" (副本)", source.Content)
}

// Generate requests a draft outline. The endpoint takes no token.
func (c *Client) Generate(ctx context.Context, topic, industry, targetAudience string) (domain.Outline, error) {
	payload := map[string]string{
		"topic":           topic,
		"industry":        industry,
		"target_audience": targetAudience,
	}
	var resp struct {
		Status  string         `json:"status"`
		Message string         `json:"message"`
		Data    domain.Outline `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/design/manual/generate", "", payload, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 500 {
			return domain.Outline{}, &GenerationError{Message: apiErr.Message}
		}
		return domain.Outline{}, err
	}
	if resp.Status != "success" {
		return domain.Outline{}, &GenerationError{Message: resp.Message}
	}
	return resp.Data, nil
}

// DashboardStats returns the platform's analytics summary.
func (c *Client) DashboardStats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/stats", "", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
