package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// BoltStore implements Store on a single bbolt database file. Buckets are
// created on first write.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if dbPath == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrIOFailure, err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %w", ErrIOFailure, err)
	}
	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Get retrieves a value by bucket and key.
func (s *BoltStore) Get(bucket string, key []byte) ([]byte, error) {
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(key)
		if v == nil {
			return ErrNotFound
		}
		// Values are only valid for the life of the transaction.
		out = bytes.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Write applies the batch in one read-write transaction.
func (s *BoltStore) Write(batch *Batch) error {
	if err := batch.validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, op := range batch.ops {
			b, err := tx.CreateBucketIfNotExists([]byte(op.Bucket))
			if err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", op.Bucket, err)
			}
			if op.Delete {
				if err := b.Delete(op.Key); err != nil {
					return fmt.Errorf("boltstore: delete: %w", err)
				}
				continue
			}
			if err := b.Put(op.Key, op.Value); err != nil {
				return fmt.Errorf("boltstore: put: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Scan collects matching pairs inside a read transaction and emits them after
// it closes, so fn may open its own transactions.
func (s *BoltStore) Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	var pairs []kv
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		k, v := c.First()
		if len(prefix) > 0 {
			k, v = c.Seek(prefix)
		}
		for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			pairs = append(pairs, kv{key: bytes.Clone(k), value: bytes.Clone(v)})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return emit(pairs, fn)
}
