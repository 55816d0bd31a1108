package models

import "time"

var validate = newValidator()

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Post represents a blog post
type Post struct {
	ID          string     `json:"id" validate:"required"`
	Slug        string     `json:"slug" validate:"required,max=220"`
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Content     Body       `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty" validate:"max=500"`
	Tags        []string   `json:"tags,omitempty" validate:"dive,required,max=50"`
	AuthorID    string     `json:"author_id" validate:"required"`
	Status      Status     `json:"status" validate:"required,oneof=draft published"`
	ViewCount   int64      `json:"view_count" validate:"gte=0"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Tag is a named label shared between posts
type Tag struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required,min=1,max=50"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an author account
type User struct {
	ID           string    `json:"id" validate:"required"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Project is an entry of the portfolio projects catalog
type Project struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Image        string   `json:"image,omitempty" yaml:"image"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Categories   []string `json:"category" yaml:"category"`
	DemoURL      string   `json:"demo_url,omitempty" yaml:"demo_url"`
	GithubURL    string   `json:"github_url" yaml:"github_url"`
}

// PostInput carries the writable fields of a post. Nil fields are left
// unchanged on update.
type PostInput struct {
	Title   *string   `json:"title,omitempty"`
	Content *Body     `json:"content,omitempty"`
	Excerpt *string   `json:"excerpt,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Status  *Status   `json:"status,omitempty"`
}
