package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"portfolio/app/middleware"
	"portfolio/app/services"
	"portfolio/app/views"
)

// Credentials is the body of sign up and sign in requests
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthController handles sign up, sign in and sign out
type AuthController struct {
	auth  *services.AuthService
	views *views.Renderer
}

func NewAuthController(auth *services.AuthService, renderer *views.Renderer) *AuthController {
	return &AuthController{auth: auth, views: renderer}
}

type signInPage struct {
	views.Page
	Email string
	Next  string
	Error string
}

// SignUp registers a new author
func (ac *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.AuthController.SignUp"

	var creds Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	user, err := ac.auth.SignUp(r.Context(), creds.Email, creds.Password)
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

// SignIn issues a session token and sets the session cookie
func (ac *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.AuthController.SignIn"

	var creds Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	session, err := ac.auth.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	setSessionCookie(w, r, session.Token, session.ExpiresAt)
	sendJSON(w, http.StatusOK, session)
}

// SignOut clears the session cookie
func (ac *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed in user, or null
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{"user": middleware.UserFrom(r.Context())})
}

// SignInPage displays the sign in form
func (ac *AuthController) SignInPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, ac.views, http.StatusOK, "auth/signin", signInPage{
		Page: views.Page{User: middleware.UserFrom(r.Context())},
		Next: safeNext(r.URL.Query().Get("next")),
	})
}

// SignInForm handles the sign in form
func (ac *AuthController) SignInForm(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.AuthController.SignInForm"

	if err := r.ParseForm(); err != nil {
		sendError(w, r, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")
	next := safeNext(r.PostForm.Get("next"))

	session, err := ac.auth.SignIn(r.Context(), email, r.PostForm.Get("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		render(w, r, ac.views, http.StatusUnauthorized, "auth/signin", signInPage{Email: email, Next: next, Error: err.Error()})
		return
	}
	if err != nil {
		handleError(w, r, op, err)
		return
	}
	setSessionCookie(w, r, session.Token, session.ExpiresAt)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// SignOutForm clears the session cookie and returns to the blog
func (ac *AuthController) SignOutForm(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, r)
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// safeNext only allows local redirect targets. Browsers treat a backslash
// like a slash, so "/\host" is as external as "//host".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") {
		return "/posts"
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return "/posts"
	}
	if strings.ContainsAny(next, "\r\n") {
		return "/posts"
	}
	return next
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
