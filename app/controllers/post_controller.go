package controllers

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portfolio/app/middleware"
	"portfolio/app/models"
	"portfolio/app/services"
	"portfolio/app/views"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const sidebarTags = 10

// PostController handles HTTP requests for blog posts
type PostController struct {
	posts *services.PostService
	tags  *services.TagService
	views *views.Renderer
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, tags *services.TagService, renderer *views.Renderer) *PostController {
	return &PostController{posts: posts, tags: tags, views: renderer}
}

type postIndexPage struct {
	views.Page
	Posts   []*models.Post
	Total   int
	Current int
	Filter  models.Filter
	Tags    []services.TagCount
	PrevURL template.URL
	NextURL template.URL
}

type postShowPage struct {
	views.Page
	Post *models.Post
}

// Index handles listing posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Index"

	filter := models.ParseFilter(r.URL.Query())
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", services.DefaultPerPage)
	user := middleware.UserFrom(r.Context())

	result, err := pc.posts.ListPosts(r.Context(), user, filter, page, perPage)
	if err != nil {
		handleError(w, r, op, err)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, result)
		return
	}

	data := postIndexPage{
		Page:    views.Page{User: user},
		Posts:   result.Posts,
		Total:   result.Total,
		Current: result.Page,
		Filter:  filter,
	}
	if result.Page > 1 {
		data.PrevURL = pageURL(filter, result.Page-1, result.PerPage)
	}
	if result.Page*result.PerPage < result.Total {
		data.NextURL = pageURL(filter, result.Page+1, result.PerPage)
	}
	if pc.tags != nil {
		if data.Tags, err = pc.tags.Popular(sidebarTags); err != nil {
			log.Error().Err(err).Str("op", op).Msg("failed to load popular tags")
		}
	}
	pc.render(w, r, "posts/index", data)
}

func pageURL(filter models.Filter, page, perPage int) template.URL {
	q := filter.Values()
	q.Set("page", strconv.Itoa(page))
	if perPage != services.DefaultPerPage {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return template.URL("/posts?" + q.Encode())
}

// Search handles full-text post search
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Search"

	q := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 0)
	posts, err := pc.posts.SearchPosts(r.Context(), middleware.UserFrom(r.Context()), q, limit)
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"query": q, "posts": posts})
}

// Show handles displaying a single post by id or slug
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Show"

	user := middleware.UserFrom(r.Context())
	post, err := pc.posts.GetPost(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	pc.posts.RecordView(post)

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, post)
		return
	}
	pc.render(w, r, "posts/show", postShowPage{Page: views.Page{User: user}, Post: post})
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, "posts/new", views.Page{User: middleware.UserFrom(r.Context())})
}

// Create handles creating a new post from JSON or a form
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Create"

	var input models.PostInput
	if wantsJSON(r) {
		if !decodeJSON(w, r, &input) {
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			sendError(w, r, "failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}
		input = formInput(r.PostForm)
	}

	post, err := pc.posts.CreatePost(r.Context(), middleware.UserFrom(r.Context()), input)
	if err != nil {
		handleError(w, r, op, err)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, "/posts/"+post.Slug, http.StatusSeeOther)
}

func formInput(form url.Values) models.PostInput {
	title := form.Get("title")
	body := models.TextBody(form.Get("content"))
	excerpt := form.Get("excerpt")
	tags := strings.Split(form.Get("tags"), ",")
	status := models.StatusDraft
	if form.Get("publish") != "" {
		status = models.StatusPublished
	}
	return models.PostInput{
		Title:   &title,
		Content: &body,
		Excerpt: &excerpt,
		Tags:    &tags,
		Status:  &status,
	}
}

// Edit handles updating an existing post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Edit"

	var input models.PostInput
	if !decodeJSON(w, r, &input) {
		return
	}
	post, err := pc.posts.UpdatePost(r.Context(), middleware.UserFrom(r.Context()), mux.Vars(r)["id"], input)
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// SaveDraft handles editor autosaves. Without an id in the path a new draft
// is created.
func (pc *PostController) SaveDraft(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.SaveDraft"

	var input models.PostInput
	if !decodeJSON(w, r, &input) {
		return
	}
	id := mux.Vars(r)["id"]
	post, err := pc.posts.SaveDraft(r.Context(), middleware.UserFrom(r.Context()), id, input)
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	sendJSON(w, status, post)
}

// Publish handles publishing a draft
func (pc *PostController) Publish(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Publish"

	post, err := pc.posts.PublishPost(r.Context(), middleware.UserFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.PostController.Delete"

	if err := pc.posts.DeletePost(r.Context(), middleware.UserFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		handleError(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (pc *PostController) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	render(w, r, pc.views, http.StatusOK, name, data)
}

func render(w http.ResponseWriter, r *http.Request, renderer *views.Renderer, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, data); err != nil {
		log.Error().Err(err).Str("op", "controllers.render").Str("template", name).Send()
		sendError(w, r, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
