// internal/clients/platform/client.go
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskpilot/internal/common/config"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/models"
)

// Logger is the narrow logging interface the client needs.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Client is the typed HTTP client for the project-management backend.
// The pipeline consumes the backend only through these API contracts;
// it never implements the underlying create/update/delete logic.
type Client struct {
	baseURL    string
	maxRetries int
	client     *http.Client
	log        Logger
}

func NewClient(cfg config.PlatformConfig, log Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		log: log,
	}
}

// do performs one backend call with bounded retry and decodes the
// response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	operation := method + " " + path

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return apperrors.NewPlatformTimeoutError(operation)
			}
		}

		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, reqErr := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if reqErr != nil {
			return fmt.Errorf("build request: %w", reqErr)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, lastErr = c.client.Do(req)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return apperrors.NewPlatformTimeoutError(operation)
		}

		if lastErr == nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				break
			}
			statusCode := resp.StatusCode
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", statusCode)
			resp = nil
			// Client errors are not transient; do not retry them.
			if statusCode >= 400 && statusCode < 500 {
				return apperrors.NewPlatformUnavailableError(operation, lastErr)
			}
			c.log.Warn("platform request failed", map[string]interface{}{
				"operation": operation,
				"attempt":   attempt,
				"error":     lastErr.Error(),
			})
		}
	}

	if lastErr != nil || resp == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("no successful response after retries")
		}
		return apperrors.NewPlatformUnavailableError(operation, lastErr)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewPlatformUnavailableError(operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// ListWorkspaces satisfies both the dispatch backend and the Context
// Resolver's listing collaborator (via the typed variant below).
func (c *Client) ListWorkspaces(ctx context.Context) (*models.Result, error) {
	var payload models.WorkspaceList
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, &payload); err != nil {
		return nil, err
	}
	return models.Ok("Workspaces retrieved", payload), nil
}

// ListWorkspacesData is the resolver-facing listing lookup.
func (c *Client) ListWorkspacesData(ctx context.Context) ([]models.Workspace, error) {
	var payload models.WorkspaceList
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Workspaces, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, name, description string) (*models.Result, error) {
	var ws models.Workspace
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/workspaces", body, &ws); err != nil {
		return nil, err
	}
	return models.Ok(fmt.Sprintf("Workspace '%s' created", ws.Name), ws), nil
}

func (c *Client) UpdateWorkspace(ctx context.Context, slug string, fields map[string]interface{}) (*models.Result, error) {
	var ws models.Workspace
	if err := c.do(ctx, http.MethodPatch, "/workspaces/"+slug, fields, &ws); err != nil {
		return nil, err
	}
	return models.Ok(fmt.Sprintf("Workspace '%s' updated", ws.Name), ws), nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, slug string) (*models.Result, error) {
	if err := c.do(ctx, http.MethodDelete, "/workspaces/"+slug, nil, nil); err != nil {
		return nil, err
	}
	return models.Ok(fmt.Sprintf("Workspace '%s' deleted", slug), nil), nil
}

func (c *Client) ListProjects(ctx context.Context, workspaceSlug string) (*models.Result, error) {
	var payload models.ProjectList
	if err := c.do(ctx, http.MethodGet, "/workspaces/"+workspaceSlug+"/projects", nil, &payload); err != nil {
		return nil, err
	}
	return models.Ok("Projects retrieved", payload), nil
}

func (c *Client) CreateProject(ctx context.Context, workspaceSlug, name, description string) (*models.Result, error) {
	var p models.Project
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/workspaces/"+workspaceSlug+"/projects", body, &p); err != nil {
		return nil, err
	}
	return models.Ok(fmt.Sprintf("Project '%s' created", p.Name), p), nil
}

func (c *Client) CreateTask(ctx context.Context, workspaceSlug, projectSlug, title string, options map[string]interface{}) (*models.Result, error) {
	var t models.Task
	body := map[string]interface{}{"title": title}
	for k, v := range options {
		body[k] = v
	}
	path := fmt.Sprintf("/workspaces/%s/projects/%s/tasks", workspaceSlug, projectSlug)
	if err := c.do(ctx, http.MethodPost, path, body, &t); err != nil {
		return nil, err
	}
	return models.Ok(fmt.Sprintf("Task '%s' created", t.Title), t), nil
}

func (c *Client) FilterTasks(ctx context.Context, workspaceSlug string, filters map[string]interface{}) (*models.Result, error) {
	var payload models.TaskList
	path := "/workspaces/" + workspaceSlug + "/tasks/filter"
	if err := c.do(ctx, http.MethodPost, path, filters, &payload); err != nil {
		return nil, err
	}
	return models.Ok("Tasks retrieved", payload), nil
}

func (c *Client) CheckAuth(ctx context.Context) (*models.Result, error) {
	var status models.AuthStatus
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &status); err != nil {
		return nil, err
	}
	return models.Ok("Authentication checked", status), nil
}

func (c *Client) Logout(ctx context.Context) (*models.Result, error) {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return nil, err
	}
	return models.Ok("You have been logged out", nil), nil
}

// Invoke is the generic pass-through for server-declared actions.
func (c *Client) Invoke(ctx context.Context, name string, args []interface{}) (*models.Result, error) {
	var result models.Result
	body := map[string]interface{}{"arguments": args}
	if err := c.do(ctx, http.MethodPost, "/actions/"+name, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
