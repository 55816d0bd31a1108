package services

import (
	"sort"
	"strings"

	"portfolio/app/models"
)

// ProjectService serves the read-only projects catalog
type ProjectService struct {
	projects []*models.Project
}

func NewProjectService(projects []*models.Project) *ProjectService {
	return &ProjectService{projects: projects}
}

// List returns the projects matching search and category in catalog order.
// An empty category or "All" matches every project.
func (s *ProjectService) List(search, category string) []*models.Project {
	out := make([]*models.Project, 0, len(s.projects))
	for _, project := range s.projects {
		if project.Matches(search, category) {
			out = append(out, project)
		}
	}
	return out
}

// Categories returns "All" followed by every distinct category, sorted
func (s *ProjectService) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, project := range s.projects {
		for _, c := range project.Categories {
			k := strings.ToLower(c)
			if _, ok := seen[k]; ok || c == "" {
				continue
			}
			seen[k] = struct{}{}
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)
	return append([]string{models.AllCategories}, categories...)
}
