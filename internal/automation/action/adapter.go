// internal/automation/action/adapter.go
package action

// PrepareArguments maps a parameter bag into the positional argument
// list the dispatch layer expects for the given action. Per-action
// conventions live here and nowhere else. Actions outside the table
// fall back to the bag's values in insertion order, an intentionally
// permissive default for server-declared actions.
func PrepareArguments(name Name, bag *Bag) []interface{} {
	switch name {
	case ListWorkspaces, CheckAuth, Logout:
		return []interface{}{}

	case CreateWorkspace:
		return []interface{}{
			bag.GetString("name"),
			bag.GetString("description"),
		}

	case EditWorkspace:
		fields := map[string]interface{}{}
		if v, ok := bag.Get("name"); ok {
			fields["name"] = v
		}
		if v, ok := bag.Get("description"); ok {
			fields["description"] = v
		}
		return []interface{}{
			bag.GetString("workspaceSlug"),
			fields,
		}

	case DeleteWorkspace:
		return []interface{}{bag.GetString("workspaceSlug")}

	case ListProjects:
		return []interface{}{bag.GetString("workspaceSlug")}

	case CreateProject:
		return []interface{}{
			bag.GetString("workspaceSlug"),
			bag.GetString("name"),
			bag.GetString("description"),
		}

	case CreateTask:
		options := map[string]interface{}{}
		if v, ok := bag.Get("priority"); ok {
			options["priority"] = v
		}
		if v, ok := bag.Get("dueDate"); ok {
			options["dueDate"] = v
		}
		return []interface{}{
			bag.GetString("workspaceSlug"),
			bag.GetString("projectSlug"),
			bag.GetString("taskTitle"),
			options,
		}

	case FilterTasks:
		filters := map[string]interface{}{}
		for _, key := range []string{"projectSlug", "priority", "state"} {
			if v, ok := bag.Get(key); ok {
				filters[key] = v
			}
		}
		return []interface{}{
			bag.GetString("workspaceSlug"),
			filters,
		}

	case Navigate:
		return []interface{}{bag.GetString("destination")}

	default:
		return bag.Values()
	}
}
