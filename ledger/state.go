package ledger

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"sort"
	"strconv"

	"github.com/inconshreveable/log15"

	"github.com/bitfsorg/quizledger/storage"
)

// frame is the working state of one ledger operation. Writes stay in the
// frame until the operation succeeds; a failed operation drops its frame and
// nothing it wrote is visible. A nested operation, entered from a token
// callback, gets a child frame that is merged into its parent on success.
type frame struct {
	parent *frame
	store  storage.Store
	writes map[string]map[string][]byte // bucket -> key -> value, nil value = delete
	order  []journalKey
	log    log15.Logger
}

type journalKey struct {
	bucket string
	key    string
}

func newFrame(s storage.Store, parent *frame) *frame {
	return &frame{parent: parent, store: s, writes: make(map[string]map[string][]byte)}
}

func (f *frame) lookup(bucket string, key []byte) ([]byte, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if b, ok := cur.writes[bucket]; ok {
			if v, ok := b[string(key)]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// get returns the value visible to this frame, or storage.ErrNotFound.
func (f *frame) get(bucket string, key []byte) ([]byte, error) {
	if v, ok := f.lookup(bucket, key); ok {
		if v == nil {
			return nil, storage.ErrNotFound
		}
		return v, nil
	}
	return f.store.Get(bucket, key)
}

func (f *frame) set(bucket string, key, value []byte) {
	b, ok := f.writes[bucket]
	if !ok {
		b = make(map[string][]byte)
		f.writes[bucket] = b
	}
	k := string(key)
	if _, seen := b[k]; !seen {
		f.order = append(f.order, journalKey{bucket: bucket, key: k})
	}
	b[k] = value
}

func (f *frame) put(bucket string, key, value []byte) {
	f.set(bucket, key, bytes.Clone(value))
}

func (f *frame) delete(bucket string, key []byte) {
	f.set(bucket, key, nil)
}

// scan visits the keys visible to this frame under prefix, in byte order.
func (f *frame) scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := f.store.Scan(bucket, prefix, func(k, v []byte) error {
		merged[string(k)] = v
		return nil
	})
	if err != nil {
		return err
	}

	var chain []*frame
	for cur := f; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	// Oldest ancestor first so the innermost write wins.
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].writes[bucket] {
			if !bytes.HasPrefix([]byte(k), prefix) {
				continue
			}
			if v == nil {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), bytes.Clone(merged[k])); err != nil {
			return err
		}
	}
	return nil
}

// mergeInto folds this frame's writes into its parent.
func (f *frame) mergeInto(parent *frame) {
	for _, jk := range f.order {
		parent.set(jk.bucket, []byte(jk.key), f.writes[jk.bucket][jk.key])
	}
}

// batch converts the frame's writes into one storage batch.
func (f *frame) batch() *storage.Batch {
	b := storage.NewBatch()
	for _, jk := range f.order {
		v := f.writes[jk.bucket][jk.key]
		if v == nil {
			b.Delete(jk.bucket, []byte(jk.key))
			continue
		}
		b.Put(jk.bucket, []byte(jk.key), v)
	}
	return b
}

// ---------------------------------------------------------------------------
// Frame-scoped record access
// ---------------------------------------------------------------------------

func (f *frame) loadQuiz(id QuizID) (*Quiz, error) {
	data, err := f.get(bucketQuizzes, quizKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeQuiz(id, data)
}

func (f *frame) saveQuiz(q *Quiz) error {
	data, err := encodeQuiz(q)
	if err != nil {
		return err
	}
	f.put(bucketQuizzes, quizKey(q.ID), data)
	return nil
}

func (f *frame) loadWinner(key []byte) (*WinnerRecord, error) {
	data, err := f.get(bucketWinners, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotAWinner
	}
	if err != nil {
		return nil, err
	}
	return decodeWinner(data)
}

func (f *frame) saveWinner(key []byte, r *WinnerRecord) {
	f.put(bucketWinners, key, encodeWinner(r))
}

func (f *frame) subscribed(key []byte) (bool, error) {
	_, err := f.get(bucketSubscriptions, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ---------------------------------------------------------------------------
// Context plumbing
// ---------------------------------------------------------------------------

type frameKey struct{ l *Ledger }

func (l *Ledger) frameFrom(ctx context.Context) *frame {
	f, _ := ctx.Value(frameKey{l}).(*frame)
	return f
}

func (l *Ledger) withFrame(ctx context.Context, f *frame) context.Context {
	return context.WithValue(ctx, frameKey{l}, f)
}

// goid returns the id of the calling goroutine, parsed from the
// "goroutine N [" stack header.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
