// Package dbtest holds the behaviour every database backend must share.
package dbtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/storage/database"
)

// Run exercises a backend through a fresh manager.
func Run(t *testing.T, manager database.Manager) {
	ctx := context.Background()

	t.Run("Read Write Delete", func(t *testing.T) {
		db, err := manager.OpenDB("basic")
		require.NoError(t, err)

		key := []byte("lifecycle-test")
		value := []byte("test-value")
		require.NoError(t, db.Write(ctx, key, value))

		got, err := db.Read(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		// The stored value does not alias the caller's slice
		value[0] = 'X'
		got, err = db.Read(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "test-value", string(got))

		require.NoError(t, db.Delete(ctx, key))
		_, err = db.Read(ctx, key)
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch Operations", func(t *testing.T) {
		db, err := manager.OpenDB("batch")
		require.NoError(t, err)

		ops := []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("batch1"), Value: []byte("value1")},
			{Type: database.BatchPut, Key: []byte("batch2"), Value: []byte("value2")},
			{Type: database.BatchDelete, Key: []byte("batch1")},
		}
		require.NoError(t, db.Batch(ctx, ops))

		_, err = db.Read(ctx, []byte("batch1"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		value, err := db.Read(ctx, []byte("batch2"))
		require.NoError(t, err)
		assert.Equal(t, "value2", string(value))

		// An unknown operation rejects the whole batch
		err = db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("batch3"), Value: []byte("value3")},
			{Type: database.BatchOpType(42), Key: []byte("batch4")},
		})
		assert.ErrorIs(t, err, database.ErrBatchOperationFailed)
		_, err = db.Read(ctx, []byte("batch3"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Iterator", func(t *testing.T) {
		db, err := manager.OpenDB("iterator")
		require.NoError(t, err)

		for _, k := range []string{"iter3", "iter1", "iter2", "other"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("value-"+k)))
		}

		collect := func(start, end []byte) []string {
			iter, err := db.Iterator(ctx, start, end)
			require.NoError(t, err)
			defer iter.Close()

			var keys []string
			for iter.Next() {
				assert.Equal(t, "value-"+string(iter.Key()), string(iter.Value()))
				keys = append(keys, string(iter.Key()))
			}
			require.NoError(t, iter.Error())
			return keys
		}

		assert.Equal(t, []string{"iter1", "iter2"}, collect([]byte("iter1"), []byte("iter3")))
		assert.Equal(t, []string{"iter1", "iter2", "iter3"}, collect([]byte("iter"), database.PrefixEnd([]byte("iter"))))
		assert.Equal(t, []string{"iter1", "iter2", "iter3", "other"}, collect(nil, nil))
		assert.Empty(t, collect([]byte("x"), nil))
	})

	t.Run("Namespaces", func(t *testing.T) {
		a, err := manager.OpenDB("ns-a")
		require.NoError(t, err)
		b, err := manager.OpenDB("ns-b")
		require.NoError(t, err)

		require.NoError(t, a.Write(ctx, []byte("k"), []byte("a")))
		_, err = b.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		// Reopening returns the same data
		again, err := manager.OpenDB("ns-a")
		require.NoError(t, err)
		got, err := again.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "a", string(got))

		require.NoError(t, manager.CloseDB("ns-b"))
		assert.ErrorIs(t, manager.CloseDB("ns-b"), database.ErrNamespaceNotFound)
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		db, err := manager.OpenDB("concurrent")
		require.NoError(t, err)

		const numGoroutines = 10
		const numOperations = 50

		var wg sync.WaitGroup
		errCh := make(chan error, numGoroutines)
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < numOperations; j++ {
					key := []byte(fmt.Sprintf("concurrent-%d-%d", id, j))
					if err := db.Write(ctx, key, key); err != nil {
						errCh <- err
						return
					}
					if _, err := db.Read(ctx, key); err != nil {
						errCh <- err
						return
					}
				}
			}(i)
		}
		wg.Wait()
		close(errCh)
		for err := range errCh {
			t.Errorf("Goroutine error: %v", err)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		db, err := manager.OpenDB("closed")
		require.NoError(t, err)
		require.NoError(t, manager.CloseDB("closed"))

		_, err = db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrDBClosed)
		assert.ErrorIs(t, db.Write(ctx, []byte("k"), []byte("v")), database.ErrDBClosed)
	})
}
