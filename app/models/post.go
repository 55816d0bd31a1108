package models

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"
)

const excerptLength = 200

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return p.Content.Validate()
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Slug == "" {
		p.Slug = MakeSlug(p.Title)
	}
	p.Tags = NormalizeTags(p.Tags)
	if p.Status == StatusPublished && p.PublishedAt == nil {
		published := p.CreatedAt
		p.PublishedAt = &published
	}
}

// Apply copies the non-nil fields of in onto the post
func (p *Post) Apply(in PostInput) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.Tags != nil {
		p.Tags = NormalizeTags(*in.Tags)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

// Publish marks the post as published. PublishedAt is only set the first time.
func (p *Post) Publish(now time.Time) {
	p.Status = StatusPublished
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

// IsPublished reports whether anonymous readers may see the post.
func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// VisibleTo reports whether the post may be shown to the given user id.
// An empty id stands for an anonymous reader.
func (p *Post) VisibleTo(userID string) bool {
	return p.IsPublished() || (userID != "" && p.AuthorID == userID)
}

// Summary returns the excerpt, falling back to the start of the body text
func (p *Post) Summary() string {
	if p.Excerpt != "" {
		return p.Excerpt
	}
	text := strings.Join(strings.Fields(p.Content.PlainText()), " ")
	if utf8.RuneCountInString(text) <= excerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptLength])) + "…"
}

// HasAnyTag reports whether the post shares at least one tag with names.
func (p *Post) HasAnyTag(names []string) bool {
	for _, tag := range p.Tags {
		for _, name := range names {
			if strings.EqualFold(tag, name) {
				return true
			}
		}
	}
	return false
}

// MakeSlug derives a URL slug from a title
func MakeSlug(title string) string {
	s := slug.Make(title)
	if s == "" {
		return "post"
	}
	return s
}

// NormalizeTags trims names, drops empties and removes case-insensitive
// duplicates. The first spelling of a name wins.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
