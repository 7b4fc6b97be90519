package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelStore implements Store on goleveldb. Buckets are key prefixes:
// bucket || 0x00 || key.
type LevelStore struct {
	db *leveldb.DB
}

// Compile-time interface check.
var _ Store = (*LevelStore)(nil)

// OpenLevelStore opens or creates a leveldb database in dir, recovering a
// corrupted manifest if necessary.
func OpenLevelStore(dir string) (*LevelStore, error) {
	if dir == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrIOFailure, err)
	}
	o := &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dir, o)
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		db, err = leveldb.RecoverFile(dir, o)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open leveldb: %w", ErrIOFailure, err)
	}
	return &LevelStore{db: db}, nil
}

func levelKey(bucket string, key []byte) []byte {
	k := make([]byte, 0, len(bucket)+1+len(key))
	k = append(k, bucket...)
	k = append(k, 0x00)
	return append(k, key...)
}

// Get retrieves a value by bucket and key.
func (s *LevelStore) Get(bucket string, key []byte) ([]byte, error) {
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	v, err := s.db.Get(levelKey(bucket, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return v, nil
}

// Write applies the batch as one synced leveldb batch.
func (s *LevelStore) Write(batch *Batch) error {
	if err := batch.validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	lb := new(leveldb.Batch)
	for _, op := range batch.ops {
		if op.Delete {
			lb.Delete(levelKey(op.Bucket, op.Key))
			continue
		}
		lb.Put(levelKey(op.Bucket, op.Key), op.Value)
	}
	if err := s.db.Write(lb, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Scan iterates the bucket prefix; leveldb keeps keys sorted.
func (s *LevelStore) Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	base := levelKey(bucket, nil)
	iter := s.db.NewIterator(util.BytesPrefix(levelKey(bucket, prefix)), nil)
	var pairs []kv
	for iter.Next() {
		pairs = append(pairs, kv{
			key:   bytes.Clone(iter.Key()[len(base):]),
			value: bytes.Clone(iter.Value()),
		})
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return emit(pairs, fn)
}

// Close closes the database.
func (s *LevelStore) Close() error { return s.db.Close() }
