package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix = "post:"
	TagKeyPrefix  = "tag:"
	UserKeyPrefix = "user:"

	// Secondary index prefixes, mapping a unique value to an entity id
	PostSlugPrefix  = "idx:post-slug:"
	TagNamePrefix   = "idx:tag-name:"
	UserEmailPrefix = "idx:user-email:"
)

// maxConflictRetries bounds how often a conflicting write transaction is rerun
const maxConflictRetries = 64

// updateWithRetry runs fn in a read-write transaction, rerunning it when badger
// reports a conflict with a concurrent writer. fn must be safe to run again.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func key(prefix, id string) []byte {
	return []byte(prefix + id)
}

func newID() string {
	return uuid.NewString()
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads the value at k into entity, mapping a missing key to ErrNotFound
func getEntity(txn *badger.Txn, k []byte, entity interface{}) error {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity marshals entity and stores it at k
func setEntity(txn *badger.Txn, k []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(k, data)
}

// lookupIndex resolves a secondary index entry to the id it points at
func lookupIndex(txn *badger.Txn, k []byte) (string, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scanPrefix decodes every value under prefix with decode
func scanPrefix(txn *badger.Txn, prefix []byte, decode func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return err
		}
	}
	return nil
}
