package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// SQL dialects supported by SQLStore.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var createTable = map[string]string{
	DialectSQLite: `CREATE TABLE IF NOT EXISTS kv (
		bucket TEXT NOT NULL,
		k      BLOB NOT NULL,
		v      BLOB NOT NULL,
		PRIMARY KEY (bucket, k)
	)`,
	DialectPostgres: `CREATE TABLE IF NOT EXISTS kv (
		bucket TEXT  NOT NULL,
		k      BYTEA NOT NULL,
		v      BYTEA NOT NULL,
		PRIMARY KEY (bucket, k)
	)`,
}

const (
	sqlGet    = `SELECT v FROM kv WHERE bucket = $1 AND k = $2`
	sqlUpsert = `INSERT INTO kv (bucket, k, v) VALUES ($1, $2, $3)
		ON CONFLICT (bucket, k) DO UPDATE SET v = excluded.v`
	sqlDelete = `DELETE FROM kv WHERE bucket = $1 AND k = $2`
	sqlScan   = `SELECT k, v FROM kv WHERE bucket = $1 ORDER BY k`
)

// SQLStore implements Store on a single kv table in SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect string
}

// Compile-time interface check.
var _ Store = (*SQLStore)(nil)

// OpenSQLiteStore opens or creates a SQLite database file at path.
func OpenSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		return nil, ErrInvalidBaseDir
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrIOFailure, err)
	}
	return openSQL(DialectSQLite, path)
}

// OpenPostgresStore connects to PostgreSQL using a lib/pq DSN.
func OpenPostgresStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres", ErrMissingDSN)
	}
	return openSQL(DialectPostgres, dsn)
}

func openSQL(dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIOFailure, dialect, err)
	}
	if dialect == DialectSQLite {
		// A single connection serialises writers and keeps the file lock simple.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(createTable[dialect]); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: create kv table: %w", ErrIOFailure, err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

// Get retrieves a value by bucket and key.
func (s *SQLStore) Get(bucket string, key []byte) ([]byte, error) {
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	var v []byte
	err := s.db.QueryRow(sqlGet, bucket, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return v, nil
}

// Write applies the batch inside one SQL transaction.
func (s *SQLStore) Write(batch *Batch) error {
	if err := batch.validate(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrIOFailure, err)
	}
	for _, op := range batch.ops {
		if op.Delete {
			_, err = tx.Exec(sqlDelete, op.Bucket, op.Key)
		} else {
			_, err = tx.Exec(sqlUpsert, op.Bucket, op.Key, op.Value)
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrIOFailure, err)
	}
	return nil
}

// Scan reads the bucket in key order and filters by prefix.
func (s *SQLStore) Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	rows, err := s.db.Query(sqlScan, bucket)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	var pairs []kv
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			_ = rows.Close()
			return fmt.Errorf("%w: %w", ErrIOFailure, err)
		}
		if bytes.HasPrefix(k, prefix) {
			pairs = append(pairs, kv{key: k, value: v})
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	_ = rows.Close()
	return emit(pairs, fn)
}

// Close closes the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }
