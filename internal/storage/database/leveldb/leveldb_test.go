package leveldb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/storage/database/dbtest"
)

func setupTestDB(t *testing.T) *Manager {
	manager := NewManager(t.TempDir(), 0)
	t.Cleanup(func() {
		manager.Close()
	})
	return manager
}

func TestLevelDB(t *testing.T) {
	dbtest.Run(t, setupTestDB(t))
}

func TestLevelDBReopen(t *testing.T) {
	manager := setupTestDB(t)
	ctx := context.Background()

	db, err := manager.OpenDB("reopen")
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("key"), []byte("persisted")))
	require.NoError(t, manager.CloseDB("reopen"))

	db, err = manager.OpenDB("reopen")
	require.NoError(t, err)
	got, err := db.Read(ctx, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}
