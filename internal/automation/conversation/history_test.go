// internal/automation/conversation/history_test.go
package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/models"
)

func TestHistoryBoundedWindow(t *testing.T) {
	h := NewHistory(10)

	for i := 0; i < 12; i++ {
		h.Append(models.RoleUser, fmt.Sprintf("message %d", i))
	}

	entries := h.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "message 2", entries[0].Content, "oldest entries are evicted first")
	assert.Equal(t, "message 11", entries[9].Content)
}

func TestHistoryDefaultSize(t *testing.T) {
	h := NewHistory(0)

	for i := 0; i < DefaultHistorySize+5; i++ {
		h.Append(models.RoleUser, "m")
	}

	assert.Equal(t, DefaultHistorySize, h.Len())
}

func TestHistoryAppendToLast(t *testing.T) {
	h := NewHistory(10)
	h.Append(models.RoleUser, "create a task")
	h.Append(models.RoleAssistant, "Creating that task for you...")

	h.AppendToLast("\n\n✅ Task 'Fix login bug' created")

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "create a task", entries[0].Content)
	assert.Equal(t, models.RoleAssistant, entries[1].Role)
	assert.Equal(t, "Creating that task for you...\n\n✅ Task 'Fix login bug' created", entries[1].Content)
}

func TestHistoryAppendToLastWhenEmpty(t *testing.T) {
	h := NewHistory(10)
	require.NotPanics(t, func() { h.AppendToLast("orphan outcome") })
	assert.Equal(t, 0, h.Len())
}

func TestHistoryEntriesReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(models.RoleUser, "original")

	entries := h.Entries()
	entries[0].Content = "mutated"

	assert.Equal(t, "original", h.Entries()[0].Content)
}

func TestHistoryRolesPreserved(t *testing.T) {
	h := NewHistory(4)
	h.Append(models.RoleUser, "u1")
	h.Append(models.RoleAssistant, "a1")
	h.Append(models.RoleUser, "u2")
	h.Append(models.RoleAssistant, "a2")
	h.Append(models.RoleUser, "u3")

	entries := h.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, models.RoleAssistant, entries[0].Role)
	assert.Equal(t, models.RoleUser, entries[3].Role)
}
