// internal/session/context.go
package session

import "sync"

// Snapshot is an immutable view of the execution context at one point
// in time. Components read snapshots; only the orchestrator and the
// dispatch layer mutate the live context.
type Snapshot struct {
	Workspace    string
	Project      string
	Organization string
	User         string
	Path         string
	Permissions  []string
}

// Context is the session-scoped execution context: current workspace,
// project, user and navigation path. Created at conversation start,
// updated on navigation events, never persisted beyond the session.
type Context struct {
	mu           sync.RWMutex
	workspace    string
	project      string
	organization string
	user         string
	path         string
	permissions  []string
}

func NewContext() *Context {
	return &Context{}
}

// Update describes a partial mutation of the context. Nil fields are
// left untouched.
type Update struct {
	Workspace    *string
	Project      *string
	Organization *string
	User         *string
	Path         *string
	Permissions  []string
}

// Apply mutates the context under lock.
func (c *Context) Apply(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.Workspace != nil {
		c.workspace = *u.Workspace
	}
	if u.Project != nil {
		c.project = *u.Project
	}
	if u.Organization != nil {
		c.organization = *u.Organization
	}
	if u.User != nil {
		c.user = *u.User
	}
	if u.Path != nil {
		c.path = *u.Path
	}
	if u.Permissions != nil {
		c.permissions = append([]string(nil), u.Permissions...)
	}
}

// Snapshot returns a consistent copy of the context.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Workspace:    c.workspace,
		Project:      c.project,
		Organization: c.organization,
		User:         c.user,
		Path:         c.path,
		Permissions:  append([]string(nil), c.permissions...),
	}
}

// String pointer helper for Update literals.
func Str(s string) *string { return &s }
