// Package catalog loads the built-in portfolio content: projects, learnings
// and the about page profile.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"portfolio/app/models"

	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var defaultProjects []byte

// Default returns the built-in projects catalog
func Default() ([]*models.Project, error) {
	return Parse(defaultProjects)
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) ([]*models.Project, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list of projects. Every project needs an id and a title.
func Parse(data []byte) ([]*models.Project, error) {
	var projects []*models.Project
	if err := yaml.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(projects))
	for i, p := range projects {
		if p == nil || p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("project %d: id and title are required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("project %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return projects, nil
}
