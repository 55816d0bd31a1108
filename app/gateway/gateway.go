// Package gateway is the client side of the blog API: a Gateway over HTTP
// and a cached Listing that filters and sorts posts locally.
package gateway

import (
	"context"
	"errors"
	"net/http"

	"portfolio/app/models"
)

// Gateway is the remote post and auth service
type Gateway interface {
	ListPosts(ctx context.Context, filter models.Filter) ([]*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, input models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, input models.PostInput) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	CurrentUser(ctx context.Context) (*models.User, error)
	SignIn(ctx context.Context, creds Credentials) error
	SignUp(ctx context.Context, creds Credentials) error
}

// Credentials are an email and password pair
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Error is the single failure type of every gateway call. Status is zero when
// the request never got a response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by status, and by message when the target has one
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == e.Status && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrNotFound        = &Error{Status: http.StatusNotFound}
	ErrUnauthenticated = &Error{Status: http.StatusUnauthorized}
	ErrForbidden       = &Error{Status: http.StatusForbidden}
)

// Describe renders err the way the UI shows it
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return "Error: " + gerr.Message
	}
	return "Error: " + err.Error()
}
