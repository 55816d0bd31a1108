package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB
type BadgerTagRepository struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerTagRepository creates a new BadgerTagRepository
func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db, now: time.Now}
}

// Ensure returns the tag with the given name, creating it when missing.
// Names are matched case-insensitively.
func (r *BadgerTagRepository) Ensure(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	var tag *models.Tag
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		tag = &models.Tag{Name: name}
		id, err := lookupIndex(txn, key(TagNamePrefix, models.TagKey(name)))
		if err == nil {
			return getEntity(txn, key(TagKeyPrefix, id), tag)
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		tag.ID = newID()
		tag.CreatedAt = r.now()
		if err := tag.Validate(); err != nil {
			return fmt.Errorf("invalid tag: %w", err)
		}
		if err := txn.Set(key(TagNamePrefix, tag.Key()), []byte(tag.ID)); err != nil {
			return err
		}
		return setEntity(txn, key(TagKeyPrefix, tag.ID), tag)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// GetByName retrieves a tag by its case-insensitive name
func (r *BadgerTagRepository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, key(TagNamePrefix, models.TagKey(name)))
		if err != nil {
			return err
		}
		return getEntity(txn, key(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// List retrieves every tag in key order
func (r *BadgerTagRepository) List() ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, []byte(TagKeyPrefix), func(val []byte) error {
			var tag models.Tag
			if err := unmarshalEntity(val, &tag); err != nil {
				return err
			}
			tags = append(tags, &tag)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
