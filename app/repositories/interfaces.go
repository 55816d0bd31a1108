package repositories

import "portfolio/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	List() ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id string) error
	IncrementViews(id string, n int64) error
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Ensure(name string) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	List() ([]*models.Tag, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
