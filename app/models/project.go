package models

import "strings"

// AllCategories is the catalog category that matches every project.
const AllCategories = "All"

// Matches reports whether the project passes the search term and category.
// The search term is matched case-insensitively against the title, the
// description and every technology.
func (p *Project) Matches(search, category string) bool {
	return p.matchesSearch(search) && p.inCategory(category)
}

func (p *Project) matchesSearch(search string) bool {
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	for _, tech := range p.Technologies {
		if strings.Contains(strings.ToLower(tech), term) {
			return true
		}
	}
	return false
}

func (p *Project) inCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, AllCategories) {
		return true
	}
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}
