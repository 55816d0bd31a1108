package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio/app/cache"
	"portfolio/app/events"
	"portfolio/app/models"
	"portfolio/app/repositories"
	"portfolio/app/search"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	untitledDraft = "Untitled draft"
)

// PostPage is one page of a filtered post listing
type PostPage struct {
	Posts   []*models.Post `json:"posts"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// PostService handles business logic for posts
type PostService struct {
	postRepo  repositories.PostRepository
	tagRepo   repositories.TagRepository
	index     *search.Index
	publisher events.Publisher
	views     *ViewCounter
	all       *cache.Cache[[]*models.Post]
	now       func() time.Time
}

// PostServiceOption customizes a PostService
type PostServiceOption func(*PostService)

// WithSearchIndex enables full-text search through index
func WithSearchIndex(index *search.Index) PostServiceOption {
	return func(s *PostService) { s.index = index }
}

// WithPublisher sends post lifecycle events to p
func WithPublisher(p events.Publisher) PostServiceOption {
	return func(s *PostService) { s.publisher = p }
}

// WithViewCounter records post views through c. Cached lists are dropped
// whenever c writes new counts.
func WithViewCounter(c *ViewCounter) PostServiceOption {
	return func(s *PostService) {
		s.views = c
		c.OnFlush(s.Refresh)
	}
}

// WithListCacheTTL sets how long the full post list is reused between writes
func WithListCacheTTL(ttl time.Duration) PostServiceOption {
	return func(s *PostService) {
		s.all = cache.New(ttl, s.loadAll)
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) PostServiceOption {
	return func(s *PostService) { s.now = now }
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, tagRepo repositories.TagRepository, opts ...PostServiceOption) *PostService {
	s := &PostService{
		postRepo:  postRepo,
		tagRepo:   tagRepo,
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
	s.all = cache.New(time.Minute, s.loadAll)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostService) loadAll(ctx context.Context) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.postRepo.List()
}

// ListPosts returns the posts visible to viewer that pass filter, one page at
// a time. A nil viewer stands for an anonymous reader.
func (s *PostService) ListPosts(ctx context.Context, viewer *models.User, filter models.Filter, page, perPage int) (*PostPage, error) {
	const op = "services.ListPosts"

	all, err := s.all.Get(ctx)
	if err != nil {
		return nil, fail(op, err)
	}

	visible := make([]*models.Post, 0, len(all))
	for _, post := range all {
		if post.VisibleTo(viewerID(viewer)) {
			visible = append(visible, post)
		}
	}
	matched := filter.Apply(visible)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	start, end := pageBounds(len(matched), page, perPage)

	return &PostPage{
		Posts:   matched[start:end],
		Total:   len(matched),
		Page:    page,
		PerPage: perPage,
	}, nil
}

// pageBounds returns the slice bounds of a page. Pages past the end are
// empty; page is compared before multiplying so it never overflows.
func pageBounds(total, page, perPage int) (int, int) {
	if page-1 > total/perPage {
		return total, total
	}
	start := (page - 1) * perPage
	end := total
	if total-start > perPage {
		end = start + perPage
	}
	return start, end
}

// GetPost retrieves a post by id or slug
func (s *PostService) GetPost(ctx context.Context, viewer *models.User, idOrSlug string) (*models.Post, error) {
	const op = "services.GetPost"

	post, err := s.postRepo.GetByID(idOrSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		post, err = s.postRepo.GetBySlug(idOrSlug)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fail(op, err)
	}
	if !post.VisibleTo(viewerID(viewer)) {
		return nil, ErrNotFound
	}
	return post, nil
}

// CreatePost creates a new post owned by author
func (s *PostService) CreatePost(ctx context.Context, author *models.User, input models.PostInput) (*models.Post, error) {
	const op = "services.CreatePost"
	if author == nil {
		return nil, ErrUnauthenticated
	}

	post := &models.Post{ID: uuid.NewString(), AuthorID: author.ID}
	post.Apply(input)
	post.BeforeCreate(s.now())
	if err := post.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.ensureTags(post.Tags); err != nil {
		return nil, fail(op, err)
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, fail(op, err)
	}

	s.afterWrite(ctx, post, events.PostCreated)
	return post, nil
}

// UpdatePost applies input to a post owned by author
func (s *PostService) UpdatePost(ctx context.Context, author *models.User, id string, input models.PostInput) (*models.Post, error) {
	const op = "services.UpdatePost"

	post, err := s.ownedPost(author, id)
	if err != nil {
		return nil, err
	}

	wasPublished := post.IsPublished()
	post.Apply(input)
	return s.save(ctx, op, post, wasPublished)
}

// PublishPost marks a post as published. Publishing twice is a no-op apart
// from the updated timestamp.
func (s *PostService) PublishPost(ctx context.Context, author *models.User, id string) (*models.Post, error) {
	const op = "services.PublishPost"

	post, err := s.ownedPost(author, id)
	if err != nil {
		return nil, err
	}

	wasPublished := post.IsPublished()
	post.Status = models.StatusPublished
	return s.save(ctx, op, post, wasPublished)
}

// SaveDraft is the editor autosave. An empty id creates a new draft, otherwise
// the existing post is updated and moved back to draft.
func (s *PostService) SaveDraft(ctx context.Context, author *models.User, id string, input models.PostInput) (*models.Post, error) {
	const op = "services.SaveDraft"
	draft := models.StatusDraft
	input.Status = &draft

	if id == "" {
		if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
			title := untitledDraft
			input.Title = &title
		}
		return s.CreatePost(ctx, author, input)
	}

	post, err := s.ownedPost(author, id)
	if err != nil {
		return nil, err
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		input.Title = nil
	}
	post.Apply(input)
	return s.save(ctx, op, post, post.IsPublished())
}

func (s *PostService) save(ctx context.Context, op string, post *models.Post, wasPublished bool) (*models.Post, error) {
	now := s.now()
	post.UpdatedAt = now
	if post.IsPublished() {
		post.Publish(now)
	}
	if err := post.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.ensureTags(post.Tags); err != nil {
		return nil, fail(op, err)
	}
	if err := s.postRepo.Update(post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fail(op, err)
	}

	eventType := events.PostUpdated
	if post.IsPublished() && !wasPublished {
		eventType = events.PostPublished
	}
	s.afterWrite(ctx, post, eventType)
	return post, nil
}

// DeletePost removes a post owned by author
func (s *PostService) DeletePost(ctx context.Context, author *models.User, id string) error {
	const op = "services.DeletePost"

	post, err := s.ownedPost(author, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(post.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fail(op, err)
	}

	s.all.Invalidate()
	if s.index != nil {
		if err := s.index.Remove(post.ID); err != nil {
			log.Error().Err(err).Str("op", op).Str("post_id", post.ID).Msg("failed to remove post from search index")
		}
	}
	s.publish(ctx, events.NewEvent(events.PostDeleted, post.ID, post.AuthorID, s.now()))
	return nil
}

// SearchPosts runs a full-text query and returns the visible matches, most
// relevant first. Without an index it falls back to a title search.
func (s *PostService) SearchPosts(ctx context.Context, viewer *models.User, q string, limit int) ([]*models.Post, error) {
	const op = "services.SearchPosts"
	switch {
	case limit <= 0:
		limit = search.DefaultLimit
	case limit > MaxPerPage:
		limit = MaxPerPage
	}

	if s.index == nil {
		page, err := s.ListPosts(ctx, viewer, models.Filter{Search: q}, 1, limit)
		if err != nil {
			return nil, err
		}
		return page.Posts, nil
	}

	ids, err := s.index.Search(ctx, q, limit)
	if err != nil {
		return nil, fail(op, err)
	}
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.postRepo.GetByID(id)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fail(op, err)
		}
		if post.VisibleTo(viewerID(viewer)) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// RecordView counts one view of a published post
func (s *PostService) RecordView(post *models.Post) {
	if s.views != nil && post.IsPublished() {
		s.views.Count(post.ID)
	}
}

// Reindex rebuilds the search index from the store
func (s *PostService) Reindex(ctx context.Context) error {
	const op = "services.Reindex"
	if s.index == nil {
		return nil
	}
	posts, err := s.all.Refresh(ctx)
	if err != nil {
		return fail(op, err)
	}
	if err := s.index.Rebuild(posts); err != nil {
		return fail(op, err)
	}
	log.Info().Str("op", op).Int("posts", len(posts)).Msg("search index rebuilt")
	return nil
}

// Refresh drops the cached post list
func (s *PostService) Refresh() {
	s.all.Invalidate()
}

func (s *PostService) ownedPost(author *models.User, id string) (*models.Post, error) {
	const op = "services.ownedPost"
	if author == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.postRepo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fail(op, err)
	}
	if post.AuthorID != author.ID {
		if !post.IsPublished() {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *PostService) ensureTags(names []string) error {
	for _, name := range names {
		if _, err := s.tagRepo.Ensure(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostService) afterWrite(ctx context.Context, post *models.Post, eventType events.Type) {
	s.all.Invalidate()
	if s.index != nil {
		if err := s.index.Index(post); err != nil {
			log.Error().Err(err).Str("op", "services.afterWrite").Str("post_id", post.ID).Msg("failed to index post")
		}
	}
	s.publish(ctx, events.NewEvent(eventType, post.ID, post.AuthorID, s.now()))
}

func (s *PostService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("op", "services.publish").Str("event", string(event.Type)).Send()
	}
}

func viewerID(viewer *models.User) string {
	if viewer == nil {
		return ""
	}
	return viewer.ID
}
