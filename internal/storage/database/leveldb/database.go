package leveldb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goExilon/internal/storage/database"
)

var syncWrite = &opt.WriteOptions{Sync: true}

// DB adapts a goleveldb instance to database.DB.
type DB struct {
	mu sync.RWMutex
	db *leveldb.DB
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, database.ErrDBClosed
	}

	// goleveldb returns a fresh slice
	val, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}
	return l.db.Put(key, value, syncWrite)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}
	return l.db.Delete(key, syncWrite)
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return database.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("%w: unknown batch operation type: %d", database.ErrBatchOperationFailed, op.Type)
		}
	}

	return l.db.Write(batch, syncWrite)
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return nil, database.ErrDBClosed
	}

	iter := l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)
	return &Iterator{iter: iter}, nil
}

func (l *DB) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// Iterator wraps a goleveldb iterator, copying keys and values out of its
// reused buffers.
type Iterator struct {
	iter       iterator.Iterator
	key, value []byte
}

func (it *Iterator) Next() bool {
	if !it.iter.Next() {
		it.key, it.value = nil, nil
		return false
	}
	it.key = append([]byte(nil), it.iter.Key()...)
	it.value = append([]byte(nil), it.iter.Value()...)
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
