// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"os"
)

// ActionCatalog is an optional, server-declared extension of the
// built-in action registry, loaded once at startup. It exists for
// forward compatibility: new simple actions can be declared without a
// code change and are dispatched through the generic pass-through.
type ActionCatalog struct {
	Version     string        `json:"version"`
	LastUpdated string        `json:"lastUpdated"`
	Actions     []ActionEntry `json:"actions"`
}

// ActionEntry mirrors the registry descriptor shape.
type ActionEntry struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Parameters  []ParameterEntry `json:"parameters"`
}

type ParameterEntry struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Load reads an action catalog from a JSON file.
func Load(path string) (*ActionCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat ActionCatalog
	err = json.Unmarshal(data, &cat)
	return &cat, err
}
