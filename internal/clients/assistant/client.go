// internal/clients/assistant/client.go
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/common/config"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/models"
)

// ChatRequest is the payload sent to the remote assistant endpoint.
type ChatRequest struct {
	Message     string                     `json:"message"`
	History     []models.ConversationEntry `json:"history"`
	WorkspaceID string                     `json:"workspaceId,omitempty"`
	ProjectID   string                     `json:"projectId,omitempty"`
}

// ActionHint is the assistant's optional structured action suggestion.
type ActionHint struct {
	Name       string      `json:"name"`
	Parameters *action.Bag `json:"parameters"`
}

// ChatResponse is the assistant's reply. A success:false response is a
// hard failure for the turn.
type ChatResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Action  *ActionHint `json:"action,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Logger is the narrow logging interface the client needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// Client talks to the chat/completion backend.
type Client struct {
	baseURL    string
	maxRetries int
	client     *http.Client
	log        Logger
}

func NewClient(cfg config.AssistantConfig, log Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		log: log,
	}
}

// Chat posts the message plus history and decodes the structured reply.
// Transient failures are retried with exponential backoff; context
// expiry surfaces immediately as a timeout error.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewAssistantTimeoutError()
			}
		}

		httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai-chat/chat", bytes.NewReader(body))
		if reqErr != nil {
			return nil, fmt.Errorf("build chat request: %w", reqErr)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(httpReq)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, apperrors.NewAssistantTimeoutError()
		}

		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
			if c.log != nil {
				c.log.Warn("assistant request failed", map[string]interface{}{
					"attempt": attempt,
					"error":   lastErr.Error(),
				})
			}
		}
	}

	if lastErr != nil || resp == nil {
		if lastErr == nil {
			lastErr = fmt.Errorf("no successful response after retries")
		}
		return nil, apperrors.NewAssistantUnavailableError(lastErr)
	}
	defer resp.Body.Close()

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, apperrors.NewAssistantUnavailableError(fmt.Errorf("decode response: %w", err))
	}

	return &chatResp, nil
}
