package models

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testPost(id, title string, created time.Time, views int64, status Status, tags ...string) *Post {
	return &Post{
		ID:        id,
		Title:     title,
		CreatedAt: created,
		ViewCount: views,
		Status:    status,
		Tags:      tags,
	}
}

func ids(posts []*Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func fixturePosts() []*Post {
	return []*Post{
		testPost("1", "Learning Go generics", base, 5, StatusPublished, "Go", "Generics"),
		testPost("2", "React hooks in depth", base.Add(24*time.Hour), 40, StatusPublished, "React", "JavaScript"),
		testPost("3", "Draft about CSS grid", base.Add(48*time.Hour), 0, StatusDraft, "CSS"),
		testPost("4", "Python for scripting", base.Add(72*time.Hour), 40, StatusPublished, "Python"),
	}
}

func TestFilterApplyEmpty(t *testing.T) {
	posts := fixturePosts()
	got := Filter{}.Apply(posts)

	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(got))
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(posts), "input must not be reordered")
}

func TestFilterApplyOldestNewest(t *testing.T) {
	t1 := base
	t2 := base.Add(time.Hour)
	posts := []*Post{
		{ID: "1", Title: "A", CreatedAt: t1},
		{ID: "2", Title: "B", CreatedAt: t2},
	}

	assert.Equal(t, []string{"1", "2"}, ids(Filter{SortBy: SortOldest}.Apply(posts)))
	assert.Equal(t, []string{"2", "1"}, ids(Filter{SortBy: SortNewest}.Apply(posts)))
}

func TestFilterApply(t *testing.T) {
	start := base.Add(24 * time.Hour)
	end := base.Add(48 * time.Hour)
	inverted := base.Add(-time.Hour)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{
			name:   "title search is case-insensitive",
			filter: Filter{Search: "REACT"},
			want:   []string{"2"},
		},
		{
			name:   "title search ignores surrounding space",
			filter: Filter{Search: "  go ", SearchBy: SearchByTitle},
			want:   []string{"1"},
		},
		{
			name:   "search by tags matches joined tag names",
			filter: Filter{Search: "script", SearchBy: SearchByTags},
			want:   []string{"2"},
		},
		{
			name:   "unknown search field falls back to title",
			filter: Filter{Search: "python", SearchBy: "body"},
			want:   []string{"4"},
		},
		{
			name:   "tag set requires any overlap",
			filter: Filter{Tags: []string{"css", "python"}},
			want:   []string{"4", "3"},
		},
		{
			name:   "date range is closed",
			filter: Filter{DateRange: DateRange{Start: &start, End: &end}},
			want:   []string{"3", "2"},
		},
		{
			name:   "open ended range",
			filter: Filter{DateRange: DateRange{Start: &end}},
			want:   []string{"4", "3"},
		},
		{
			name:   "inverted range is ignored",
			filter: Filter{DateRange: DateRange{Start: &end, End: &inverted}},
			want:   []string{"4", "3", "2", "1"},
		},
		{
			name:   "status",
			filter: Filter{Status: StatusDraft},
			want:   []string{"3"},
		},
		{
			name:   "unknown status is ignored",
			filter: Filter{Status: "archived"},
			want:   []string{"4", "3", "2", "1"},
		},
		{
			name:   "popular ranks by views and keeps input order on ties",
			filter: Filter{SortBy: SortPopular},
			want:   []string{"2", "4", "1", "3"},
		},
		{
			name:   "none keeps input order",
			filter: Filter{SortBy: SortNone},
			want:   []string{"1", "2", "3", "4"},
		},
		{
			name:   "unknown sort key uses newest",
			filter: Filter{SortBy: "random"},
			want:   []string{"4", "3", "2", "1"},
		},
		{
			name:   "combined",
			filter: Filter{Search: "in", Status: StatusPublished, SortBy: SortOldest},
			want:   []string{"1", "2", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(fixturePosts())))
		})
	}
}

func TestFilterApplyStableOnEqualTimestamps(t *testing.T) {
	posts := []*Post{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(time.Minute)},
		{ID: "d", CreatedAt: base},
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(Filter{SortBy: SortNewest}.Apply(posts)))
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(Filter{SortBy: SortOldest}.Apply(posts)))
}

func TestFilterApplyNewestIsNonIncreasing(t *testing.T) {
	posts := fixturePosts()
	posts = append(posts, testPost("5", "Another", base.Add(36*time.Hour), 1, StatusPublished))

	got := Filter{SortBy: SortNewest}.Apply(posts)
	for i := 0; i+1 < len(got); i++ {
		assert.False(t, got[i].CreatedAt.Before(got[i+1].CreatedAt))
	}
}

func TestFilterApplyTitleContainsTerm(t *testing.T) {
	posts := fixturePosts()
	for _, p := range posts {
		got := Filter{Search: p.Title[2:6], SearchBy: SearchByTitle}.Apply(posts)
		assert.Contains(t, ids(got), p.ID)
	}
}

func TestParseFilter(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		q := url.Values{
			"search":    {"go"},
			"search_by": {"tags"},
			"tags":      {"Go, react", "go"},
			"from":      {"2024-03-01"},
			"to":        {"2024-03-02"},
			"status":    {"published"},
			"sort":      {"popular"},
		}
		f := ParseFilter(q)

		assert.Equal(t, "go", f.Search)
		assert.Equal(t, SearchByTags, f.SearchBy)
		assert.Equal(t, []string{"Go", "react"}, f.Tags)
		require.NotNil(t, f.DateRange.Start)
		require.NotNil(t, f.DateRange.End)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateRange.Start)
		assert.Equal(t, time.Date(2024, 3, 2, 23, 59, 59, 999999999, time.UTC), *f.DateRange.End)
		assert.Equal(t, StatusPublished, f.Status)
		assert.Equal(t, SortPopular, f.SortBy)
	})

	t.Run("malformed fields are dropped", func(t *testing.T) {
		q := url.Values{
			"from":   {"yesterday"},
			"to":     {"2024-13-45"},
			"status": {"archived"},
			"sort":   {"random"},
		}
		assert.Equal(t, Filter{}, ParseFilter(q))
	})

	t.Run("inverted range is dropped", func(t *testing.T) {
		q := url.Values{"from": {"2024-03-05"}, "to": {"2024-03-01"}}
		assert.True(t, ParseFilter(q).DateRange.IsZero())
	})

	t.Run("round trip through query values", func(t *testing.T) {
		start := base
		f := Filter{
			Search:    "hooks",
			SearchBy:  SearchByTitle,
			Tags:      []string{"React"},
			DateRange: DateRange{Start: &start},
			Status:    StatusPublished,
			SortBy:    SortOldest,
		}
		got := ParseFilter(f.Values())
		assert.Equal(t, f.Search, got.Search)
		assert.Equal(t, f.Tags, got.Tags)
		assert.True(t, start.Equal(*got.DateRange.Start))
		assert.Equal(t, f.Status, got.Status)
		assert.Equal(t, f.SortBy, got.SortBy)
	})
}
