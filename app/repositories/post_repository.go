package repositories

import (
	"errors"
	"fmt"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post. An id is generated when empty and the slug is
// made unique by suffixing part of the id.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	slug := post.Slug
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		post.Slug = slug
		taken, err := exists(txn, key(PostKeyPrefix, post.ID))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}

		if err := claimSlug(txn, post); err != nil {
			return err
		}
		return setEntity(txn, key(PostKeyPrefix, post.ID), post)
	})
}

// claimSlug points the slug index at the post, adjusting the slug when another
// post already holds it
func claimSlug(txn *badger.Txn, post *models.Post) error {
	if post.Slug == "" {
		post.Slug = models.MakeSlug(post.Title)
	}
	owner, err := lookupIndex(txn, key(PostSlugPrefix, post.Slug))
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case owner != post.ID:
		suffix := post.ID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		post.Slug = fmt.Sprintf("%s-%s", post.Slug, suffix)
	}
	return txn.Set(key(PostSlugPrefix, post.Slug), []byte(post.ID))
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post through the slug index
func (r *BadgerPostRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, key(PostSlugPrefix, slug))
		if err != nil {
			return err
		}
		return getEntity(txn, key(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves every stored post in key order
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update replaces an existing post. Concurrent writers are not reconciled;
// the last write wins. The view counter is only changed by IncrementViews.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	slug := post.Slug
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		post.Slug = slug
		var stored models.Post
		if err := getEntity(txn, key(PostKeyPrefix, post.ID), &stored); err != nil {
			return err
		}
		post.ViewCount = stored.ViewCount

		if post.Slug != stored.Slug {
			if err := txn.Delete(key(PostSlugPrefix, stored.Slug)); err != nil {
				return err
			}
			if err := claimSlug(txn, post); err != nil {
				return err
			}
		}
		return setEntity(txn, key(PostKeyPrefix, post.ID), post)
	})
}

// Delete deletes a post and its slug index entry
func (r *BadgerPostRepository) Delete(id string) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		var stored models.Post
		if err := getEntity(txn, key(PostKeyPrefix, id), &stored); err != nil {
			return err
		}
		if err := txn.Delete(key(PostSlugPrefix, stored.Slug)); err != nil {
			return err
		}
		return txn.Delete(key(PostKeyPrefix, id))
	})
}

// IncrementViews adds n to the view counter of a post
func (r *BadgerPostRepository) IncrementViews(id string, n int64) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		var post models.Post
		if err := getEntity(txn, key(PostKeyPrefix, id), &post); err != nil {
			return err
		}
		post.ViewCount += n
		return setEntity(txn, key(PostKeyPrefix, id), &post)
	})
}
