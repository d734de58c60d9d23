package database

import (
	"context"
)

// DB defines the basic operations any database implementation must support
type DB interface {
	// Basic operations
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch operations, applied atomically
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iteration over [start, end) in key order; a nil bound is open
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator allows traversing over database entries
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation represents a single operation in a batch
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Manager handles the lifecycle of databases
type Manager interface {
	// OpenDB opens or creates a database with the given name
	OpenDB(name string) (DB, error)

	// CloseDB closes a specific database
	CloseDB(name string) error

	// Close closes all databases
	Close() error
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, for use as an iterator upper bound. It returns nil when no such
// key exists.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
