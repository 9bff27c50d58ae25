// internal/models/entities.go
package models

// Workspace is the top-level container users navigate between.
type Workspace struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	ProjectCount int    `json:"projectCount,omitempty"`
}

// Project belongs to a workspace.
type Project struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	TaskCount   int    `json:"taskCount,omitempty"`
}

// Task belongs to a project.
type Task struct {
	Title    string `json:"title"`
	ID       string `json:"id,omitempty"`
	Priority string `json:"priority,omitempty"`
	State    string `json:"state,omitempty"`
	DueDate  string `json:"dueDate,omitempty"`
}

// WorkspaceList is the payload returned by workspace listing operations.
type WorkspaceList struct {
	Workspaces []Workspace `json:"workspaces"`
}

// ProjectList is the payload returned by project listing operations.
type ProjectList struct {
	Projects []Project `json:"projects"`
}

// TaskList is the payload returned by task filtering operations.
type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// AuthStatus is the payload returned by authentication checks.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
}
