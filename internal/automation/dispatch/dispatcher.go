// internal/automation/dispatch/dispatcher.go
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"taskpilot/internal/automation/action"
	"taskpilot/internal/automation/resolver"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/models"
	"taskpilot/internal/session"
)

// Backend is the seam where the project-management CRUD collaborator is
// invoked. Every method awaits the uniform execution result.
type Backend interface {
	ListWorkspaces(ctx context.Context) (*models.Result, error)
	CreateWorkspace(ctx context.Context, name, description string) (*models.Result, error)
	UpdateWorkspace(ctx context.Context, slug string, fields map[string]interface{}) (*models.Result, error)
	DeleteWorkspace(ctx context.Context, slug string) (*models.Result, error)
	ListProjects(ctx context.Context, workspaceSlug string) (*models.Result, error)
	CreateProject(ctx context.Context, workspaceSlug, name, description string) (*models.Result, error)
	CreateTask(ctx context.Context, workspaceSlug, projectSlug, title string, options map[string]interface{}) (*models.Result, error)
	FilterTasks(ctx context.Context, workspaceSlug string, filters map[string]interface{}) (*models.Result, error)
	CheckAuth(ctx context.Context) (*models.Result, error)
	Logout(ctx context.Context) (*models.Result, error)

	// Invoke is the generic pass-through for server-declared actions
	// outside the closed set.
	Invoke(ctx context.Context, name string, args []interface{}) (*models.Result, error)
}

// Dispatcher routes an action and its adapted arguments to the concrete
// callable. The switch is exhaustive over the closed action set; the
// default branch is the narrow forward-compatibility escape hatch,
// enabled explicitly.
type Dispatcher struct {
	backend     Backend
	sess        *session.Context
	passthrough bool
}

func New(backend Backend, sess *session.Context, passthrough bool) *Dispatcher {
	return &Dispatcher{backend: backend, sess: sess, passthrough: passthrough}
}

// Dispatch invokes the callable for name with positional args produced
// by action.PrepareArguments. A registered action with no dispatch
// entry is a configuration defect surfaced immediately; no partial
// work is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, name action.Name, args []interface{}) (*models.Result, error) {
	switch name {
	case action.ListWorkspaces:
		return d.backend.ListWorkspaces(ctx)

	case action.CreateWorkspace:
		return d.backend.CreateWorkspace(ctx, argString(args, 0), argString(args, 1))

	case action.EditWorkspace:
		return d.backend.UpdateWorkspace(ctx, argString(args, 0), argMap(args, 1))

	case action.DeleteWorkspace:
		return d.backend.DeleteWorkspace(ctx, argString(args, 0))

	case action.ListProjects:
		return d.backend.ListProjects(ctx, argString(args, 0))

	case action.CreateProject:
		return d.backend.CreateProject(ctx, argString(args, 0), argString(args, 1), argString(args, 2))

	case action.CreateTask:
		return d.backend.CreateTask(ctx, argString(args, 0), argString(args, 1), argString(args, 2), argMap(args, 3))

	case action.FilterTasks:
		return d.backend.FilterTasks(ctx, argString(args, 0), argMap(args, 1))

	case action.Navigate:
		return d.navigate(argString(args, 0))

	case action.CheckAuth:
		return d.backend.CheckAuth(ctx)

	case action.Logout:
		return d.backend.Logout(ctx)

	default:
		if d.passthrough {
			return d.backend.Invoke(ctx, string(name), args)
		}
		return nil, apperrors.NewActionNotImplementedError(string(name))
	}
}

// navigate updates the session's navigation context locally; there is
// no backend call for a UI navigation.
func (d *Dispatcher) navigate(destination string) (*models.Result, error) {
	dest := strings.TrimSpace(destination)
	if dest == "" {
		return models.Failf("No destination to navigate to"), nil
	}

	path := dest
	if !strings.HasPrefix(path, "/") {
		path = "/" + resolver.GenerateSlug(dest)
	}

	update := session.Update{Path: session.Str(path)}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	// Reserved routes like /settings are destinations, not workspaces;
	// they must not leak into the navigation context.
	if len(segments) > 0 && resolver.IsSlug(segments[0]) && !resolver.IsReservedRoute(segments[0]) {
		update.Workspace = session.Str(segments[0])
		if len(segments) > 1 && resolver.IsSlug(segments[1]) {
			update.Project = session.Str(segments[1])
		}
	}
	d.sess.Apply(update)

	return models.Ok(fmt.Sprintf("Navigating to %s", dest), nil), nil
}

func argString(args []interface{}, i int) string {
	if i >= len(args) || args[i] == nil {
		return ""
	}
	if s, ok := args[i].(string); ok {
		return s
	}
	return fmt.Sprint(args[i])
}

func argMap(args []interface{}, i int) map[string]interface{} {
	if i >= len(args) {
		return map[string]interface{}{}
	}
	if m, ok := args[i].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
