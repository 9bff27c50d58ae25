// internal/automation/intent/matcher_test.go
package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/session"
)

func TestMatcherParse(t *testing.T) {
	matcher := NewMatcher()
	ctx := session.Snapshot{}

	tests := []struct {
		name       string
		message    string
		wantAction action.Name
		wantParams map[string]string
	}{
		{
			name:       "create task with title",
			message:    "create a task called Fix login bug",
			wantAction: action.CreateTask,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"projectSlug":   "current",
				"taskTitle":     "Fix login bug",
			},
		},
		{
			name:       "create task with explicit project",
			message:    "create a new task named Ship release in project Website",
			wantAction: action.CreateTask,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"projectSlug":   "Website",
				"taskTitle":     "Ship release",
			},
		},
		{
			name:       "quoted task title is unwrapped",
			message:    `create a task called "Fix login bug"`,
			wantAction: action.CreateTask,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"projectSlug":   "current",
				"taskTitle":     "Fix login bug",
			},
		},
		{
			name:       "priority filter normalizes case",
			message:    "show me high priority tasks",
			wantAction: action.FilterTasks,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"priority":      "HIGH",
			},
		},
		{
			name:       "list low priority tasks",
			message:    "list all low priority tasks",
			wantAction: action.FilterTasks,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"priority":      "LOW",
			},
		},
		{
			name:       "rename workspace",
			message:    "rename the workspace Acme to Acme Corp",
			wantAction: action.EditWorkspace,
			wantParams: map[string]string{
				"workspaceSlug": "Acme",
				"name":          "Acme Corp",
			},
		},
		{
			name:       "create workspace",
			message:    "create a workspace called Marketing Team",
			wantAction: action.CreateWorkspace,
			wantParams: map[string]string{"name": "Marketing Team"},
		},
		{
			name:       "create project defaults to current workspace",
			message:    "create a project named Website",
			wantAction: action.CreateProject,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"name":          "Website",
			},
		},
		{
			name:       "delete workspace",
			message:    "delete the workspace Old Stuff",
			wantAction: action.DeleteWorkspace,
			wantParams: map[string]string{"workspaceSlug": "Old Stuff"},
		},
		{
			name:       "list projects",
			message:    "show me the projects",
			wantAction: action.ListProjects,
			wantParams: map[string]string{"workspaceSlug": "current"},
		},
		{
			name:       "list workspaces",
			message:    "list my workspaces",
			wantAction: action.ListWorkspaces,
			wantParams: map[string]string{},
		},
		{
			name:       "navigate",
			message:    "go to the dashboard",
			wantAction: action.Navigate,
			wantParams: map[string]string{"destination": "the dashboard"},
		},
		{
			name:       "auth check",
			message:    "am I logged in?",
			wantAction: action.CheckAuth,
			wantParams: map[string]string{},
		},
		{
			name:       "logout",
			message:    "log out",
			wantAction: action.Logout,
			wantParams: map[string]string{},
		},
		{
			name:       "task shorthand",
			message:    "task: write the release notes",
			wantAction: action.CreateTask,
			wantParams: map[string]string{
				"workspaceSlug": "current",
				"projectSlug":   "current",
				"taskTitle":     "write the release notes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := matcher.Parse(tt.message, ctx)
			require.NotNil(t, intent, "expected a match for %q", tt.message)
			assert.Equal(t, tt.wantAction, intent.Action)
			for key, want := range tt.wantParams {
				assert.Equal(t, want, intent.Parameters.GetString(key), "parameter %s", key)
			}
			assert.Equal(t, len(tt.wantParams), intent.Parameters.Len())
		})
	}
}

func TestMatcherParseNoMatch(t *testing.T) {
	matcher := NewMatcher()
	ctx := session.Snapshot{}

	for _, message := range []string{
		"",
		"   ",
		"how is the weather today",
		"what can you do for me",
		"tasks are hard",
	} {
		assert.Nil(t, matcher.Parse(message, ctx), "expected no match for %q", message)
	}
}

func TestMatcherSpecificRuleBeatsGeneric(t *testing.T) {
	// "create a task called X" satisfies the detailed task rule; it must
	// win over any later, looser interpretation.
	matcher := NewMatcher()
	intent := matcher.Parse("create a task called Review PR", session.Snapshot{})

	require.NotNil(t, intent)
	assert.Equal(t, action.CreateTask, intent.Action)
	assert.Equal(t, "Review PR", intent.Parameters.GetString("taskTitle"))
	assert.GreaterOrEqual(t, intent.Confidence, 0.9)
}

func TestMatcherCaseInsensitive(t *testing.T) {
	matcher := NewMatcher()

	intent := matcher.Parse("CREATE A TASK CALLED Deploy", session.Snapshot{})
	require.NotNil(t, intent)
	assert.Equal(t, action.CreateTask, intent.Action)
	assert.Equal(t, "Deploy", intent.Parameters.GetString("taskTitle"))
}

func TestTrimOperand(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"quoted"`, "quoted"},
		{`'single'`, "single"},
		{"  spaced  ", "spaced"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimOperand(tt.in))
	}
}
