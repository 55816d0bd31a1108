package controllers

import (
	"net/http"

	"portfolio/app/middleware"
	"portfolio/app/models"
	"portfolio/app/services"
	"portfolio/app/views"
)

// TagController serves the tag listings
type TagController struct {
	tags *services.TagService
}

func NewTagController(tags *services.TagService) *TagController {
	return &TagController{tags: tags}
}

// Index lists every tag
func (tc *TagController) Index(w http.ResponseWriter, r *http.Request) {
	tags, err := tc.tags.List()
	if err != nil {
		handleError(w, r, "controllers.TagController.Index", err)
		return
	}
	sendJSON(w, http.StatusOK, tags)
}

// Popular lists the most used tags
func (tc *TagController) Popular(w http.ResponseWriter, r *http.Request) {
	tags, err := tc.tags.Popular(queryInt(r, "limit", sidebarTags))
	if err != nil {
		handleError(w, r, "controllers.TagController.Popular", err)
		return
	}
	sendJSON(w, http.StatusOK, tags)
}

// ProjectController serves the projects catalog
type ProjectController struct {
	projects *services.ProjectService
	views    *views.Renderer
}

func NewProjectController(projects *services.ProjectService, renderer *views.Renderer) *ProjectController {
	return &ProjectController{projects: projects, views: renderer}
}

type projectIndexPage struct {
	views.Page
	Projects   []*models.Project
	Categories []string
	Search     string
	Category   string
}

// Index lists the projects matching the search and category parameters
func (pc *ProjectController) Index(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = models.AllCategories
	}
	projects := pc.projects.List(search, category)

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, projects)
		return
	}
	render(w, r, pc.views, http.StatusOK, "projects/index", projectIndexPage{
		Page:       views.Page{User: middleware.UserFrom(r.Context())},
		Projects:   projects,
		Categories: pc.projects.Categories(),
		Search:     search,
		Category:   category,
	})
}

// Categories lists the project categories, "All" first
func (pc *ProjectController) Categories(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, pc.projects.Categories())
}
