package gateway

import (
	"context"
	"time"

	"portfolio/app/cache"
	"portfolio/app/models"
)

// Listing keeps every post the gateway returns and answers filtered views
// locally. Writes made through the Listing drop the cached posts.
type Listing struct {
	gateway Gateway
	posts   *cache.Cache[[]*models.Post]
}

// NewListing creates a Listing that refetches after ttl
func NewListing(g Gateway, ttl time.Duration) *Listing {
	l := &Listing{gateway: g}
	l.posts = cache.New(ttl, func(ctx context.Context) ([]*models.Post, error) {
		return g.ListPosts(ctx, models.Filter{SortBy: models.SortNone})
	})
	return l
}

// Posts returns the cached posts passing filter, in its sort order
func (l *Listing) Posts(ctx context.Context, filter models.Filter) ([]*models.Post, error) {
	all, err := l.posts.Get(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(all), nil
}

// Refresh refetches the posts
func (l *Listing) Refresh(ctx context.Context) error {
	_, err := l.posts.Refresh(ctx)
	return err
}

func (l *Listing) Create(ctx context.Context, input models.PostInput) (*models.Post, error) {
	defer l.posts.Invalidate()
	return l.gateway.CreatePost(ctx, input)
}

func (l *Listing) Update(ctx context.Context, id string, input models.PostInput) (*models.Post, error) {
	defer l.posts.Invalidate()
	return l.gateway.UpdatePost(ctx, id, input)
}

func (l *Listing) Delete(ctx context.Context, id string) error {
	defer l.posts.Invalidate()
	return l.gateway.DeletePost(ctx, id)
}
