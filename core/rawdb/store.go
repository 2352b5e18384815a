package rawdb

import (
	"fmt"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
)

// LevelDB tuning for the small working set of a secret handler ledger.
const (
	levelDBCacheMB  = 16
	levelDBHandles  = 16
	levelDBMetricNS = "secrethandler/db/"
)

// ethdbBackend is the subset of go-ethereum's ethdb.KeyValueStore used here.
type ethdbBackend interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() ethdb.Batch
	NewIterator(prefix []byte, start []byte) ethdb.Iterator
	Close() error
}

// store adapts a go-ethereum key-value store to the Database interface.
// Missing keys are reported as ErrNotFound regardless of backend.
type store struct {
	db ethdbBackend
}

// NewMemoryDB creates a new in-memory database. It is safe for concurrent use.
func NewMemoryDB() Database {
	return &store{db: memorydb.New()}
}

// NewLevelDB opens or creates a persistent LevelDB database at path.
func NewLevelDB(path string, readonly bool) (Database, error) {
	db, err := leveldb.New(path, levelDBCacheMB, levelDBHandles, levelDBMetricNS, readonly)
	if err != nil {
		return nil, fmt.Errorf("rawdb: open leveldb %s: %w", path, err)
	}
	return &store{db: db}, nil
}

func (s *store) Has(key []byte) (bool, error) { return s.db.Has(key) }

func (s *store) Get(key []byte) ([]byte, error) {
	val, err := s.db.Get(key)
	if err == nil {
		return val, nil
	}
	if ok, herr := s.db.Has(key); herr == nil && !ok {
		return nil, ErrNotFound
	}
	return nil, err
}

func (s *store) Put(key, value []byte) error { return s.db.Put(key, value) }

func (s *store) Delete(key []byte) error { return s.db.Delete(key) }

func (s *store) Close() error { return s.db.Close() }

func (s *store) NewBatch() Batch { return s.db.NewBatch() }

func (s *store) NewIterator(prefix []byte) Iterator {
	return s.db.NewIterator(prefix, nil)
}
