// internal/clients/assistant/client_test.go
package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/common/config"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/common/logger"
	"taskpilot/internal/models"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(config.AssistantConfig{
		BaseURL:    baseURL,
		Timeout:    2000,
		MaxRetries: maxRetries,
	}, logger.NewNoOpLogger())
}

func TestChatSuccess(t *testing.T) {
	var received ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ai-chat/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(ChatResponse{
			Success: true,
			Message: "Creating that task for you.",
			Action: &ActionHint{
				Name:       "createTask",
				Parameters: action.NewBag().Set("taskTitle", "Fix login bug"),
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	resp, err := client.Chat(context.Background(), ChatRequest{
		Message: "create a task called Fix login bug",
		History: []models.ConversationEntry{
			{Role: models.RoleUser, Content: "create a task called Fix login bug"},
		},
		WorkspaceID: "acme",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Creating that task for you.", resp.Message)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "createTask", resp.Action.Name)
	assert.Equal(t, "Fix login bug", resp.Action.Parameters.GetString("taskTitle"))

	assert.Equal(t, "create a task called Fix login bug", received.Message)
	assert.Equal(t, "acme", received.WorkspaceID)
	assert.Len(t, received.History, 1)
}

func TestChatRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ChatResponse{Success: true, Message: "Recovered just fine."})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	resp, err := client.Chat(context.Background(), ChatRequest{Message: "hello"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChatExhaustedRetriesReturnsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	resp, err := client.Chat(context.Background(), ChatRequest{Message: "hello"})

	require.Error(t, err)
	assert.Nil(t, resp)

	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestChatContextCancellationIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL, 0)
	_, err := client.Chat(ctx, ChatRequest{Message: "hello"})

	require.Error(t, err)
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantTimeout, stdErr.Code)
}

func TestChatUnreachableEndpoint(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", 0)

	_, err := client.Chat(context.Background(), ChatRequest{Message: "hello"})

	require.Error(t, err)
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantUnavailable, stdErr.Code)
}

func TestChatMalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Chat(context.Background(), ChatRequest{Message: "hello"})

	require.Error(t, err)
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAssistantUnavailable, stdErr.Code)
}
