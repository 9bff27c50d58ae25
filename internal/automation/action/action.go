// internal/automation/action/action.go
package action

import (
	"sort"

	"taskpilot/internal/common/validation"
)

// Name identifies a supported action. The dispatch layer switches
// exhaustively over these values.
type Name string

const (
	ListWorkspaces  Name = "listWorkspaces"
	CreateWorkspace Name = "createWorkspace"
	EditWorkspace   Name = "editWorkspace"
	DeleteWorkspace Name = "deleteWorkspace"
	ListProjects    Name = "listProjects"
	CreateProject   Name = "createProject"
	CreateTask      Name = "createTask"
	FilterTasks     Name = "filterTasks"
	Navigate        Name = "navigate"
	CheckAuth       Name = "checkAuth"
	Logout          Name = "logout"
)

// Parameter declares one entry of an action's parameter contract.
type Parameter struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Descriptor is the registry entry for one action.
type Descriptor struct {
	Name        Name        `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
	Category    string      `json:"category"`
}

// Schema derives the validation schema from the parameter contract.
func (d Descriptor) Schema() validation.Schema {
	props := make(map[string]validation.Property, len(d.Parameters))
	var required []string
	for _, p := range d.Parameters {
		props[p.Name] = validation.Property{Type: "string"}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return validation.Schema{
		Properties:           props,
		Required:             required,
		AdditionalProperties: true,
	}
}

// Registry is the fixed catalog of supported actions. It is populated
// once at startup and read-only afterwards.
type Registry struct {
	descriptors map[Name]Descriptor
}

// NewRegistry builds the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{descriptors: make(map[Name]Descriptor)}
	for _, d := range builtinCatalog {
		r.descriptors[d.Name] = d
	}
	return r
}

var builtinCatalog = []Descriptor{
	{
		Name:        ListWorkspaces,
		Description: "List all workspaces available to the user",
		Category:    "workspace",
	},
	{
		Name:        CreateWorkspace,
		Description: "Create a new workspace",
		Parameters: []Parameter{
			{Name: "name", Required: true},
			{Name: "description"},
		},
		Category: "workspace",
	},
	{
		Name:        EditWorkspace,
		Description: "Rename a workspace or update its description",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
			{Name: "name"},
			{Name: "description"},
		},
		Category: "workspace",
	},
	{
		Name:        DeleteWorkspace,
		Description: "Delete a workspace",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
		},
		Category: "workspace",
	},
	{
		Name:        ListProjects,
		Description: "List the projects in a workspace",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
		},
		Category: "project",
	},
	{
		Name:        CreateProject,
		Description: "Create a project inside a workspace",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
			{Name: "name", Required: true},
			{Name: "description"},
		},
		Category: "project",
	},
	{
		Name:        CreateTask,
		Description: "Create a task inside a project",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
			{Name: "projectSlug", Required: true},
			{Name: "taskTitle", Required: true},
			{Name: "priority"},
			{Name: "dueDate"},
		},
		Category: "task",
	},
	{
		Name:        FilterTasks,
		Description: "Filter tasks by priority, state or project",
		Parameters: []Parameter{
			{Name: "workspaceSlug", Required: true},
			{Name: "projectSlug"},
			{Name: "priority"},
			{Name: "state"},
		},
		Category: "task",
	},
	{
		Name:        Navigate,
		Description: "Navigate the UI to a workspace, project or page",
		Parameters: []Parameter{
			{Name: "destination", Required: true},
		},
		Category: "navigation",
	},
	{
		Name:        CheckAuth,
		Description: "Check whether the user is authenticated",
		Category:    "auth",
	},
	{
		Name:        Logout,
		Description: "Log the user out",
		Category:    "auth",
	},
}

// RegisterRemote adds a server-declared descriptor during startup.
// It refuses to shadow a built-in action.
func (r *Registry) RegisterRemote(d Descriptor) bool {
	if _, exists := r.descriptors[d.Name]; exists {
		return false
	}
	r.descriptors[d.Name] = d
	return true
}

// IsSupported reports whether the catalog knows the action.
func (r *Registry) IsSupported(name Name) bool {
	_, ok := r.descriptors[name]
	return ok
}

// Details returns the descriptor for an action.
func (r *Registry) Details(name Name) (Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// Names returns the catalog's action names, sorted for stable output.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.descriptors))
	for n := range r.descriptors {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Validate runs the parameter contract over a bag. Unknown actions
// report as valid here; IsSupported gates them separately.
func (r *Registry) Validate(name Name, bag *Bag) *validation.ValidationResult {
	d, ok := r.descriptors[name]
	if !ok {
		return &validation.ValidationResult{Valid: true}
	}
	return validation.ValidateParameters(bag.Map(), d.Schema())
}

// MissingRequired returns the names of required parameters absent or
// empty in the bag.
func (r *Registry) MissingRequired(name Name, bag *Bag) []string {
	return r.Validate(name, bag).MissingFields()
}
