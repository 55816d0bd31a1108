package catalog

import (
	_ "embed"
	"fmt"

	"portfolio/app/models"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed learnings.yaml
	defaultTutorials []byte

	//go:embed about.yaml
	defaultProfile []byte
)

// Tutorials returns the built-in learnings
func Tutorials() ([]*models.Tutorial, error) {
	return ParseTutorials(defaultTutorials)
}

// ParseTutorials decodes a YAML list of tutorials and validates each one
func ParseTutorials(data []byte) ([]*models.Tutorial, error) {
	var tutorials []*models.Tutorial
	if err := yaml.Unmarshal(data, &tutorials); err != nil {
		return nil, fmt.Errorf("failed to parse learnings: %w", err)
	}
	seen := make(map[string]struct{}, len(tutorials))
	for i, t := range tutorials {
		if t == nil {
			return nil, fmt.Errorf("tutorial %d: empty entry", i)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tutorial %d: %w", i, err)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("tutorial %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return tutorials, nil
}

// About returns the built-in about page profile
func About() (*models.Profile, error) {
	return ParseProfile(defaultProfile)
}

func ParseProfile(data []byte) (*models.Profile, error) {
	var profile models.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &profile, nil
}
