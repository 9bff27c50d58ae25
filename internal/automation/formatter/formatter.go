// internal/automation/formatter/formatter.go
package formatter

import (
	"fmt"
	"strings"

	"taskpilot/internal/models"
)

const maxItemized = 10

// Format renders an execution result as a concise human-readable
// string. Pure function, no side effects.
func Format(res *models.Result) string {
	if res == nil {
		return "❌ No result"
	}

	if !res.Success {
		msg := fmt.Sprintf("❌ %s", res.Message)
		if res.Error != "" {
			msg += fmt.Sprintf(" (%s)", res.Error)
		}
		return msg
	}

	base := fmt.Sprintf("✅ %s", res.Message)

	switch data := res.Data.(type) {
	case nil:
		return base

	case models.WorkspaceList:
		return base + formatWorkspaces(data.Workspaces)
	case *models.WorkspaceList:
		return base + formatWorkspaces(data.Workspaces)

	case models.ProjectList:
		return base + formatProjects(data.Projects)
	case *models.ProjectList:
		return base + formatProjects(data.Projects)

	case models.TaskList:
		return base + formatTasks(data.Tasks)
	case *models.TaskList:
		return base + formatTasks(data.Tasks)

	case models.Workspace:
		return base + "\n" + workspaceLine(data)
	case *models.Workspace:
		return base + "\n" + workspaceLine(*data)

	case models.Project:
		return base + "\n" + projectLine(data)
	case *models.Project:
		return base + "\n" + projectLine(*data)

	case models.Task:
		return base + "\n" + taskLine(data)
	case *models.Task:
		return base + "\n" + taskLine(*data)

	case models.AuthStatus:
		return base + "\n" + authLine(data)
	case *models.AuthStatus:
		return base + "\n" + authLine(*data)

	case []interface{}:
		return base + formatGenericList(data)

	default:
		// Unrecognized shapes fall back to the base message only, so
		// nested structures are never dumped at the user.
		return base
	}
}

func formatWorkspaces(workspaces []models.Workspace) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d workspace(s)", len(workspaces))
	if len(workspaces) == 0 || len(workspaces) > maxItemized {
		return b.String()
	}
	b.WriteString(":")
	for _, ws := range workspaces {
		b.WriteString("\n• ")
		b.WriteString(ws.Name)
		if ws.Description != "" {
			fmt.Fprintf(&b, ": %s", ws.Description)
		}
		if ws.ProjectCount > 0 {
			fmt.Fprintf(&b, " (%d projects)", ws.ProjectCount)
		}
	}
	return b.String()
}

func formatProjects(projects []models.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d project(s)", len(projects))
	if len(projects) == 0 || len(projects) > maxItemized {
		return b.String()
	}
	b.WriteString(":")
	for _, p := range projects {
		b.WriteString("\n• ")
		b.WriteString(p.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, ": %s", p.Description)
		}
		if p.TaskCount > 0 {
			fmt.Fprintf(&b, " (%d tasks)", p.TaskCount)
		}
	}
	return b.String()
}

func formatTasks(tasks []models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d task(s)", len(tasks))
	if len(tasks) == 0 || len(tasks) > maxItemized {
		return b.String()
	}
	b.WriteString(":")
	for _, t := range tasks {
		b.WriteString("\n• ")
		b.WriteString(t.Title)
		if t.Priority != "" {
			fmt.Fprintf(&b, " [%s]", t.Priority)
		}
	}
	return b.String()
}

func formatGenericList(items []interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d item(s)", len(items))
	if len(items) == 0 || len(items) > maxItemized {
		return b.String()
	}
	b.WriteString(":")
	for _, item := range items {
		b.WriteString("\n• ")
		b.WriteString(itemLabel(item))
	}
	return b.String()
}

// itemLabel prefers an item's name or title over its string form.
func itemLabel(item interface{}) string {
	if m, ok := item.(map[string]interface{}); ok {
		if name, ok := m["name"].(string); ok && name != "" {
			return name
		}
		if title, ok := m["title"].(string); ok && title != "" {
			return title
		}
	}
	return fmt.Sprint(item)
}

func workspaceLine(ws models.Workspace) string {
	line := fmt.Sprintf("Workspace '%s' (%s)", ws.Name, ws.Slug)
	if ws.Description != "" {
		line += ": " + ws.Description
	}
	return line
}

func projectLine(p models.Project) string {
	line := fmt.Sprintf("Project '%s' (%s)", p.Name, p.Slug)
	if p.Description != "" {
		line += ": " + p.Description
	}
	return line
}

func taskLine(t models.Task) string {
	line := fmt.Sprintf("Task '%s'", t.Title)
	if t.Priority != "" {
		line += fmt.Sprintf(" [%s]", t.Priority)
	}
	if t.DueDate != "" {
		line += " due " + t.DueDate
	}
	return line
}

func authLine(a models.AuthStatus) string {
	if a.Authenticated {
		if a.User != "" {
			return fmt.Sprintf("You are logged in as %s.", a.User)
		}
		return "You are logged in."
	}
	return "You are not logged in."
}
