package leveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/LeJamon/goExilon/internal/storage/database"
)

type Manager struct {
	dbs       map[string]*DB
	path      string
	cacheSize int
	mu        sync.Mutex
}

// NewManager opens databases as <path>/<name>.ldb. cacheSize is the block
// cache capacity in bytes; zero keeps the goleveldb default.
func NewManager(path string, cacheSize int) *Manager {
	return &Manager{
		dbs:       make(map[string]*DB),
		path:      path,
		cacheSize: cacheSize,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return db, nil
	}

	dbPath := filepath.Join(m.path, name+".ldb")
	ldb, err := leveldb.OpenFile(dbPath, &opt.Options{
		BlockCacheCapacity: m.cacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}

	db := NewDB(ldb)
	m.dbs[name] = db
	return db, nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrNamespaceNotFound, name)
	}

	delete(m.dbs, name)
	return db.close()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
