package database

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryDB is an in-process DB. It backs the "memory" storage backend and
// the storage tests.
type MemoryDB struct {
	data     map[string][]byte
	mu       sync.RWMutex
	isClosed bool
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		data: make(map[string][]byte),
	}
}

func (m *MemoryDB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, ErrDBClosed
	}
	if value, ok := m.data[string(key)]; ok {
		return bytes.Clone(value), nil
	}
	return nil, ErrKeyNotFound
}

func (m *MemoryDB) Write(ctx context.Context, key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *MemoryDB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *MemoryDB) Batch(ctx context.Context, ops []BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed {
		return ErrDBClosed
	}
	for _, op := range ops {
		if op.Type != BatchPut && op.Type != BatchDelete {
			return fmt.Errorf("%w: unknown batch operation type: %d", ErrBatchOperationFailed, op.Type)
		}
	}
	for _, op := range ops {
		switch op.Type {
		case BatchPut:
			m.data[string(op.Key)] = bytes.Clone(op.Value)
		case BatchDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Close marks the database closed; later calls fail with ErrDBClosed.
func (m *MemoryDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isClosed = true
	return nil
}

// memoryIterator walks a sorted copy of the matching entries
type memoryIterator struct {
	keys     []string
	values   [][]byte
	position int
}

func (m *MemoryDB) Iterator(ctx context.Context, start, end []byte) (Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isClosed {
		return nil, ErrDBClosed
	}

	var keys []string
	for k := range m.data {
		if (start == nil || k >= string(start)) && (end == nil || k < string(end)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = bytes.Clone(m.data[k])
	}

	return &memoryIterator{
		keys:     keys,
		values:   values,
		position: -1,
	}, nil
}

func (it *memoryIterator) Next() bool {
	it.position++
	return it.position < len(it.keys)
}

func (it *memoryIterator) Key() []byte {
	if it.position >= 0 && it.position < len(it.keys) {
		return []byte(it.keys[it.position])
	}
	return nil
}

func (it *memoryIterator) Value() []byte {
	if it.position >= 0 && it.position < len(it.values) {
		return it.values[it.position]
	}
	return nil
}

func (it *memoryIterator) Error() error {
	return nil
}

func (it *memoryIterator) Close() error {
	return nil
}

// MemoryManager hands out MemoryDBs by name.
type MemoryManager struct {
	dbs map[string]*MemoryDB
	mu  sync.Mutex
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{dbs: make(map[string]*MemoryDB)}
}

func (m *MemoryManager) OpenDB(name string) (DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return db, nil
	}
	db := NewMemoryDB()
	m.dbs[name] = db
	return db, nil
}

func (m *MemoryManager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNamespaceNotFound, name)
	}
	delete(m.dbs, name)
	return db.Close()
}

func (m *MemoryManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, db := range m.dbs {
		db.Close()
		delete(m.dbs, name)
	}
	return nil
}
