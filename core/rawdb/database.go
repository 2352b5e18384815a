// Package rawdb provides the low-level key-value storage of the secret
// handler ledger and typed accessors for every persisted item.
//
// The schema follows go-ethereum's prefix-based layout where each data type
// uses a distinct key prefix to avoid collisions. Backends are go-ethereum
// ethdb stores: an in-memory database for tests and ephemeral ledgers, and
// LevelDB for a persistent data directory.
package rawdb

import "errors"

var (
	ErrNotFound = errors.New("not found")
)

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// KeyValueStore combines read and write access to a backing data store.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	Close() error
}

// Iterator iterates over a database's key/value pairs in ascending key order.
type Iterator interface {
	Next() bool
	Error() error
	Key() []byte
	Value() []byte
	Release()
}

// Batch is a write-only database that commits changes atomically.
type Batch interface {
	KeyValueWriter
	ValueSize() int
	Write() error
	Reset()
}

// Database is the full database interface combining all capabilities.
type Database interface {
	KeyValueStore
	NewBatch() Batch
	NewIterator(prefix []byte) Iterator
}
