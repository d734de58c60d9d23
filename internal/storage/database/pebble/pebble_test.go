package pebble

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/storage/database/dbtest"
)

func setupTestDB(t *testing.T) *Manager {
	manager := NewManager(t.TempDir(), 1<<20)
	t.Cleanup(func() {
		manager.Close()
	})
	return manager
}

func TestPebbleDB(t *testing.T) {
	dbtest.Run(t, setupTestDB(t))
}

func TestPebbleReopen(t *testing.T) {
	manager := setupTestDB(t)
	ctx := context.Background()

	db, err := manager.OpenDB("reopen")
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("key"), []byte("persisted")))
	require.NoError(t, manager.CloseDB("reopen"))

	_, err = os.Stat(filepath.Join(manager.path, "reopen.db"))
	require.NoError(t, err, "database directory was not created")

	db, err = manager.OpenDB("reopen")
	require.NoError(t, err)
	got, err := db.Read(ctx, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}
