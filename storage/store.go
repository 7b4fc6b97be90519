package storage

import (
	"bytes"
	"sort"
)

// Store is a bucketed key-value store. Values are opaque bytes; callers own
// the encoding. Every backend applies a Batch atomically.
type Store interface {
	// Get returns the value stored under bucket/key, or ErrNotFound.
	Get(bucket string, key []byte) ([]byte, error)

	// Write applies every operation in the batch, or none of them.
	Write(batch *Batch) error

	// Scan visits the keys of bucket that start with prefix, in ascending
	// byte order. An error returned by fn stops the scan and is returned.
	// fn receives copies and may call back into the store.
	Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error

	// Close releases the backend.
	Close() error
}

// Op is a single mutation inside a Batch.
type Op struct {
	Bucket string
	Key    []byte
	Value  []byte // nil when Delete is set
	Delete bool
}

// Batch collects mutations that must become visible together.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch { return &Batch{} }

// Put queues a write of value under bucket/key.
func (b *Batch) Put(bucket string, key, value []byte) {
	b.ops = append(b.ops, Op{Bucket: bucket, Key: bytes.Clone(key), Value: bytes.Clone(value)})
}

// Delete queues removal of bucket/key.
func (b *Batch) Delete(bucket string, key []byte) {
	b.ops = append(b.ops, Op{Bucket: bucket, Key: bytes.Clone(key), Delete: true})
}

// Len returns the number of queued operations.
func (b *Batch) Len() int { return len(b.ops) }

// Ops returns the queued operations in insertion order.
func (b *Batch) Ops() []Op { return b.ops }

// validate checks bucket names and keys before a backend touches disk.
func (b *Batch) validate() error {
	for _, op := range b.ops {
		if err := checkKey(op.Bucket, op.Key); err != nil {
			return err
		}
	}
	return nil
}

func checkKey(bucket string, key []byte) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return nil
}

// kv is a copied key/value pair collected during a scan.
type kv struct {
	key   []byte
	value []byte
}

// emit sorts the collected pairs and feeds them to fn outside any backend lock.
func emit(pairs []kv, fn func(key, value []byte) error) error {
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	for _, p := range pairs {
		if err := fn(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}
