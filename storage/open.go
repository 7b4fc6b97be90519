package storage

import (
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendBolt     = "bolt"
	BackendLevelDB  = "leveldb"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends lists every backend name in a stable order.
var Backends = []string{BackendBolt, BackendLevelDB, BackendSQLite, BackendPostgres, BackendRedis, BackendMemory}

// Open constructs the named backend. File backends live under dataDir;
// postgres and redis connect using dsn.
func Open(backend, dataDir, dsn string) (Store, error) {
	switch backend {
	case BackendBolt:
		return OpenBoltStore(filepath.Join(dataDir, "quizledger.db"))
	case BackendLevelDB:
		return OpenLevelStore(filepath.Join(dataDir, "leveldb"))
	case BackendSQLite:
		return OpenSQLiteStore(filepath.Join(dataDir, "quizledger.sqlite"))
	case BackendPostgres:
		return OpenPostgresStore(dsn)
	case BackendRedis:
		return OpenRedisStore(dsn, "quizledger")
	case BackendMemory:
		return NewMemStore(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
