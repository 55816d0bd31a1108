package mock

import (
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio/app/models"
	"portfolio/app/repositories"

	"github.com/google/uuid"
)

type PostRepository struct {
	posts map[string]models.Post
	order []string
	mutex sync.RWMutex

	// Err, when set, is returned by every call
	Err error
}

type TagRepository struct {
	tags  map[string]*models.Tag
	mutex sync.RWMutex
}

type UserRepository struct {
	users map[string]models.User
	mutex sync.RWMutex
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]models.Post)}
}

func NewTagRepository() *TagRepository {
	return &TagRepository{tags: make(map[string]*models.Tag)}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]models.User)}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]models.Post)
	m.order = nil
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if _, exists := m.posts[post.ID]; exists {
		return repositories.ErrDuplicate
	}
	if post.Slug == "" {
		post.Slug = models.MakeSlug(post.Title)
	}
	for _, other := range m.posts {
		if other.Slug == post.Slug {
			post.Slug = post.Slug + "-" + post.ID[:8]
			break
		}
	}
	m.posts[post.ID] = *post
	m.order = append(m.order, post.ID)
	return nil
}

func (m *PostRepository) GetByID(id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) GetBySlug(slug string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, post := range m.posts {
		if post.Slug == slug {
			return &post, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// List returns posts in insertion order
func (m *PostRepository) List() ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	posts := make([]*models.Post, 0, len(m.order))
	for _, id := range m.order {
		if post, exists := m.posts[id]; exists {
			posts = append(posts, &post)
		}
	}
	return posts, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	stored, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	post.ViewCount = stored.ViewCount
	m.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *PostRepository) IncrementViews(id string, n int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Err != nil {
		return m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return repositories.ErrNotFound
	}
	post.ViewCount += n
	m.posts[id] = post
	return nil
}

// TagRepository implementation
func (m *TagRepository) Ensure(name string) (*models.Tag, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	k := models.TagKey(name)
	if tag, exists := m.tags[k]; exists {
		return tag, nil
	}
	tag := &models.Tag{ID: uuid.NewString(), Name: strings.TrimSpace(name), CreatedAt: time.Now()}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	m.tags[k] = tag
	return tag, nil
}

func (m *TagRepository) GetByName(name string) (*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tag, exists := m.tags[models.TagKey(name)]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return tag, nil
}

func (m *TagRepository) List() ([]*models.Tag, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tags := make([]*models.Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	for _, other := range m.users {
		if other.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	email = models.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}
