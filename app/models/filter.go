package models

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// SortKey selects the ordering of a post listing.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortPopular SortKey = "popular"
	SortNone    SortKey = "none"
)

// DefaultSort is the order used when no valid sort key is given.
const DefaultSort = SortNewest

func (k SortKey) valid() bool {
	switch k {
	case SortNewest, SortOldest, SortPopular, SortNone:
		return true
	}
	return false
}

// SearchField selects which part of a post the search term is matched against.
type SearchField string

const (
	SearchByTitle SearchField = "title"
	SearchByTags  SearchField = "tags"
)

// DateRange is a closed interval over the creation time of posts. Either
// bound may be nil.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

func (r DateRange) valid() bool {
	return r.Start == nil || r.End == nil || !r.Start.After(*r.End)
}

func (r DateRange) contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Filter describes which posts are shown and in what order. Every field is
// optional and unknown values are treated as not set.
type Filter struct {
	Search    string      `json:"search,omitempty"`
	SearchBy  SearchField `json:"search_by,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	DateRange DateRange   `json:"date_range,omitempty"`
	Status    Status      `json:"status,omitempty"`
	SortBy    SortKey     `json:"sort,omitempty"`
}

// Apply returns the posts that pass the filter, ordered by its sort key.
// The input slice is never modified.
func (f Filter) Apply(posts []*Post) []*Post {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	tags := NormalizeTags(f.Tags)

	out := make([]*Post, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(f.searchText(post)), term) {
			continue
		}
		if len(tags) > 0 && !post.HasAnyTag(tags) {
			continue
		}
		if f.DateRange.valid() && !f.DateRange.contains(post.CreatedAt) {
			continue
		}
		if f.Status.Valid() && post.Status != f.Status {
			continue
		}
		out = append(out, post)
	}

	sortPosts(out, f.SortBy)
	return out
}

func (f Filter) searchText(post *Post) string {
	if f.SearchBy == SearchByTags {
		return strings.Join(post.Tags, " ")
	}
	return post.Title
}

func sortPosts(posts []*Post, key SortKey) {
	if !key.valid() {
		key = DefaultSort
	}
	switch key {
	case SortNewest:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].ViewCount > posts[j].ViewCount
		})
	}
}

const dateLayout = "2006-01-02"

// ParseFilter reads a filter from query parameters. Malformed values are
// dropped rather than reported.
func ParseFilter(q url.Values) Filter {
	var f Filter
	f.Search = strings.TrimSpace(q.Get("search"))

	if by := SearchField(strings.ToLower(q.Get("search_by"))); by == SearchByTags {
		f.SearchBy = by
	} else if f.Search != "" {
		f.SearchBy = SearchByTitle
	}

	var tags []string
	for _, v := range q["tags"] {
		tags = append(tags, strings.Split(v, ",")...)
	}
	f.Tags = NormalizeTags(tags)

	f.DateRange.Start = parseBound(q.Get("from"), false)
	f.DateRange.End = parseBound(q.Get("to"), true)
	if !f.DateRange.valid() {
		f.DateRange = DateRange{}
	}

	if status := Status(strings.ToLower(q.Get("status"))); status.Valid() {
		f.Status = status
	}
	if key := SortKey(strings.ToLower(q.Get("sort"))); key.valid() {
		f.SortBy = key
	}
	return f
}

func parseBound(value string, endOfDay bool) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

// Values encodes the filter as query parameters understood by ParseFilter.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
		if f.SearchBy != "" {
			q.Set("search_by", string(f.SearchBy))
		}
	}
	if tags := NormalizeTags(f.Tags); len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}
	if f.DateRange.Start != nil {
		q.Set("from", f.DateRange.Start.Format(time.RFC3339Nano))
	}
	if f.DateRange.End != nil {
		q.Set("to", f.DateRange.End.Format(time.RFC3339Nano))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.SortBy != "" {
		q.Set("sort", string(f.SortBy))
	}
	return q
}
