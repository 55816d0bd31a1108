package repositories

import (
	"time"

	"portfolio/app/models"

	"github.com/dgraph-io/badger/v4"
)

// storedUser is the persisted form of a user. Unlike models.User it keeps the
// password hash in its JSON encoding.
type storedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func newStoredUser(u *models.User) storedUser {
	return storedUser{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
}

func (s storedUser) model() *models.User {
	return &models.User{ID: s.ID, Email: s.Email, PasswordHash: s.PasswordHash, CreatedAt: s.CreatedAt}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user. Emails are unique.
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = newID()
	}
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		taken, err := exists(txn, key(UserEmailPrefix, user.Email))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicate
		}
		if err := txn.Set(key(UserEmailPrefix, user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return setEntity(txn, key(UserKeyPrefix, user.ID), newStoredUser(user))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id string) (*models.User, error) {
	var user storedUser
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, key(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return user.model(), nil
}

// GetByEmail retrieves a user through the email index
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	var user storedUser
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, key(UserEmailPrefix, models.NormalizeEmail(email)))
		if err != nil {
			return err
		}
		return getEntity(txn, key(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return user.model(), nil
}
