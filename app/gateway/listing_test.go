package gateway

import (
	"context"
	"testing"
	"time"

	"portfolio/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGateway struct {
	Gateway
	lists int
}

func (g *countingGateway) ListPosts(ctx context.Context, filter models.Filter) ([]*models.Post, error) {
	g.lists++
	return g.Gateway.ListPosts(ctx, filter)
}

func titles(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestListingFiltersLocally(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := signedInClient(t, srv, "author@example.com")

	for _, title := range []string{"React hooks", "Go channels", "React context"} {
		_, err := c.CreatePost(ctx, postInput(title, models.StatusPublished))
		require.NoError(t, err)
	}

	g := &countingGateway{Gateway: c}
	listing := NewListing(g, time.Minute)

	tests := []struct {
		name   string
		filter models.Filter
		want   []string
	}{
		{name: "newest first", filter: models.Filter{}, want: []string{"React context", "Go channels", "React hooks"}},
		{name: "oldest first", filter: models.Filter{SortBy: models.SortOldest}, want: []string{"React hooks", "Go channels", "React context"}},
		{name: "search", filter: models.Filter{Search: "react", SortBy: models.SortOldest}, want: []string{"React hooks", "React context"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := listing.Posts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(posts))
		})
	}

	assert.Equal(t, 1, g.lists)

	require.NoError(t, listing.Refresh(ctx))
	assert.Equal(t, 2, g.lists)
}

func TestListingDeleteThenRelist(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := signedInClient(t, srv, "author@example.com")
	listing := NewListing(c, time.Hour)

	keep, err := listing.Create(ctx, postInput("Keep me", models.StatusPublished))
	require.NoError(t, err)
	gone, err := listing.Create(ctx, postInput("Delete me", models.StatusPublished))
	require.NoError(t, err)

	posts, err := listing.Posts(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	require.NoError(t, listing.Delete(ctx, gone.ID))

	posts, err = listing.Posts(ctx, models.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, keep.ID, posts[0].ID)

	title := "Kept and renamed"
	_, err = listing.Update(ctx, keep.ID, models.PostInput{Title: &title})
	require.NoError(t, err)

	posts, err = listing.Posts(ctx, models.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept and renamed"}, titles(posts))
}

func TestListingError(t *testing.T) {
	srv := newTestServer(t)
	srv.Close()

	_, err := NewListing(New(srv.URL), time.Minute).Posts(context.Background(), models.Filter{})
	require.Error(t, err)
	assert.Contains(t, Describe(err), "Error: ")
}
