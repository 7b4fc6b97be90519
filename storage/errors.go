package storage

import "errors"

var (
	// ErrNotFound indicates no value exists for the given bucket and key.
	ErrNotFound = errors.New("storage: value not found")

	// ErrInvalidBucket indicates an empty bucket name.
	ErrInvalidBucket = errors.New("storage: bucket name must not be empty")

	// ErrEmptyKey indicates an attempt to read or write an empty key.
	ErrEmptyKey = errors.New("storage: key must not be empty")

	// ErrIOFailure indicates the backend failed to read or write.
	ErrIOFailure = errors.New("storage: I/O failure")

	// ErrInvalidBaseDir indicates the data directory path is invalid.
	ErrInvalidBaseDir = errors.New("storage: invalid base directory")

	// ErrUnknownBackend indicates the backend name is not recognized.
	ErrUnknownBackend = errors.New("storage: unknown backend")

	// ErrMissingDSN indicates a networked backend was opened without a DSN.
	ErrMissingDSN = errors.New("storage: backend requires a DSN")
)
