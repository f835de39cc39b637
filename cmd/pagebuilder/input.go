package main

import (
	"fmt"
	"os"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

func loadSchema(path string) (*controls.Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	return controls.LoadFile(path)
}

// loadSettings reads a JSON object. An empty path yields empty settings.
func loadSettings(path string) (settings.Snapshot, error) {
	if path == "" {
		return settings.Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return settings.Snapshot{}, err
	}
	snap, err := settings.Parse(data)
	if err != nil {
		return settings.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// withDefaults overlays values on the schema defaults.
func withDefaults(schema *controls.Registry, values settings.Snapshot) (settings.Snapshot, error) {
	defaults, err := settings.FromMap(schema.Defaults())
	if err != nil {
		return settings.Snapshot{}, err
	}
	return settings.Merge(defaults, values)
}
