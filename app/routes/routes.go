package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"portfolio/app/controllers"
	"portfolio/app/middleware"
	"portfolio/app/services"
	"portfolio/app/views"

	"github.com/gorilla/mux"
)

// Dependencies are the services the router hands to its controllers
type Dependencies struct {
	Posts          *services.PostService
	Tags           *services.TagService
	Projects       *services.ProjectService
	Learnings      *services.LearningService
	Auth           *services.AuthService
	Views          *views.Renderer
	StaticDir      string
	AllowedOrigins []string
}

// SetupRoutes builds the application router. CORS wraps the whole router so
// that preflight requests are answered before route matching.
func SetupRoutes(deps Dependencies) http.Handler {
	router := NewRouter(deps)
	if len(deps.AllowedOrigins) == 0 {
		return router
	}
	return middleware.CORS(deps.AllowedOrigins)(router)
}

// NewRouter defines the application's routes and returns a router.
func NewRouter(deps Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Authenticate(deps.Auth))

	postController := controllers.NewPostController(deps.Posts, deps.Tags, deps.Views)
	authController := controllers.NewAuthController(deps.Auth, deps.Views)
	tagController := controllers.NewTagController(deps.Tags)
	projectController := controllers.NewProjectController(deps.Projects, deps.Views)
	learningController := controllers.NewLearningController(deps.Learnings, deps.Views)

	router.NotFoundHandler = http.HandlerFunc(notFound)

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	// Posts API endpoints
	apiPosts := api.PathPrefix("/posts").Subrouter()
	apiPosts.HandleFunc("", postController.Index).Methods("GET")
	apiPosts.HandleFunc("/search", postController.Search).Methods("GET")
	apiPosts.Handle("", authed(postController.Create)).Methods("POST")
	apiPosts.Handle("/drafts", authed(postController.SaveDraft)).Methods("POST")
	apiPosts.HandleFunc("/{id}", postController.Show).Methods("GET")
	apiPosts.Handle("/{id}", authed(postController.Edit)).Methods("PUT")
	apiPosts.Handle("/{id}/draft", authed(postController.SaveDraft)).Methods("PUT")
	apiPosts.Handle("/{id}/publish", authed(postController.Publish)).Methods("POST")
	apiPosts.Handle("/{id}", authed(postController.Delete)).Methods("DELETE")

	// Tags and projects API endpoints
	api.HandleFunc("/tags", tagController.Index).Methods("GET")
	api.HandleFunc("/tags/popular", tagController.Popular).Methods("GET")
	api.HandleFunc("/projects", projectController.Index).Methods("GET")
	api.HandleFunc("/projects/categories", projectController.Categories).Methods("GET")
	api.HandleFunc("/learnings", learningController.Index).Methods("GET")
	api.HandleFunc("/learnings/{id}", learningController.Show).Methods("GET")
	api.HandleFunc("/about", learningController.About).Methods("GET")
	api.HandleFunc("/timeline", learningController.Timeline).Methods("GET")

	// Auth API endpoints
	apiAuth := api.PathPrefix("/auth").Subrouter()
	apiAuth.HandleFunc("/signup", authController.SignUp).Methods("POST")
	apiAuth.HandleFunc("/signin", authController.SignIn).Methods("POST")
	apiAuth.HandleFunc("/signout", authController.SignOut).Methods("POST")
	apiAuth.HandleFunc("/me", authController.Me).Methods("GET")

	// Serve static files
	if deps.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	// Web routes
	router.Handle("/", http.RedirectHandler("/posts", http.StatusFound)).Methods("GET")

	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.Handle("/new", authed(postController.New)).Methods("GET")
	posts.Handle("", authed(postController.Create)).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")

	router.HandleFunc("/projects", projectController.Index).Methods("GET")
	router.HandleFunc("/learnings", learningController.Index).Methods("GET")
	router.HandleFunc("/learnings/{id}", learningController.Show).Methods("GET")
	router.HandleFunc("/about", learningController.About).Methods("GET")
	router.HandleFunc("/signin", authController.SignInPage).Methods("GET")
	router.HandleFunc("/signin", authController.SignInForm).Methods("POST")
	router.HandleFunc("/signout", authController.SignOutForm).Methods("POST")

	return router
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
		return
	}
	http.Error(w, "Error: not found", http.StatusNotFound)
}
