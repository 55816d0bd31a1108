package controllers

import (
	"net/http"

	"portfolio/app/middleware"
	"portfolio/app/models"
	"portfolio/app/services"
	"portfolio/app/views"

	"github.com/gorilla/mux"
)

// LearningController serves the tutorials and the about page
type LearningController struct {
	learnings *services.LearningService
	views     *views.Renderer
}

func NewLearningController(learnings *services.LearningService, renderer *views.Renderer) *LearningController {
	return &LearningController{learnings: learnings, views: renderer}
}

type learningIndexPage struct {
	views.Page
	Tutorials []*models.Tutorial
}

type tutorialPage struct {
	views.Page
	Tutorial *models.Tutorial
	Nav      *models.TopicNav
}

type aboutPage struct {
	views.Page
	Profile    *models.Profile
	Experience []models.TimelineItem
	Education  []models.TimelineItem
}

// Index lists the tutorials
func (lc *LearningController) Index(w http.ResponseWriter, r *http.Request) {
	tutorials := lc.learnings.Tutorials()
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, tutorials)
		return
	}
	render(w, r, lc.views, http.StatusOK, "learnings/index", learningIndexPage{
		Page:      views.Page{User: middleware.UserFrom(r.Context())},
		Tutorials: tutorials,
	})
}

// Show returns a whole tutorial as JSON, or renders one topic of it with
// links to the previous and next topics. Link-only tutorials redirect.
func (lc *LearningController) Show(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.LearningController.Show"
	id := mux.Vars(r)["id"]

	if wantsJSON(r) {
		tutorial, err := lc.learnings.Tutorial(id)
		if err != nil {
			handleError(w, r, op, err)
			return
		}
		sendJSON(w, http.StatusOK, tutorial)
		return
	}

	tutorial, nav, err := lc.learnings.Topic(id, r.URL.Query().Get("topic"))
	if tutorial != nil && len(tutorial.Sections) == 0 && tutorial.URL != "" {
		http.Redirect(w, r, tutorial.URL, http.StatusFound)
		return
	}
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	render(w, r, lc.views, http.StatusOK, "learnings/show", tutorialPage{
		Page:     views.Page{User: middleware.UserFrom(r.Context())},
		Tutorial: tutorial,
		Nav:      nav,
	})
}

// About renders the profile or returns it as JSON
func (lc *LearningController) About(w http.ResponseWriter, r *http.Request) {
	profile := lc.learnings.Profile()
	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, profile)
		return
	}
	render(w, r, lc.views, http.StatusOK, "about/index", aboutPage{
		Page:       views.Page{User: middleware.UserFrom(r.Context())},
		Profile:    profile,
		Experience: profile.TimelineOf(models.KindExperience),
		Education:  profile.TimelineOf(models.KindEducation),
	})
}

// Timeline lists the about page entries, optionally only one kind
func (lc *LearningController) Timeline(w http.ResponseWriter, r *http.Request) {
	items, err := lc.learnings.Timeline(r.URL.Query().Get("kind"))
	if err != nil {
		sendError(w, r, "kind must be experience or education", http.StatusBadRequest)
		return
	}
	sendJSON(w, http.StatusOK, items)
}
