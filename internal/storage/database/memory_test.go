package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeJamon/goExilon/internal/storage/database"
	"github.com/LeJamon/goExilon/internal/storage/database/dbtest"
)

func TestMemoryDB(t *testing.T) {
	manager := database.NewMemoryManager()
	defer manager.Close()

	dbtest.Run(t, manager)
}

func TestPrefixEnd(t *testing.T) {
	tests := []struct {
		prefix []byte
		want   []byte
	}{
		{[]byte("snap/"), []byte("snap0")},
		{[]byte{0x01, 0xff}, []byte{0x02}},
		{[]byte{0xff, 0xff}, nil},
		{[]byte{}, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, database.PrefixEnd(tt.prefix), "%x", tt.prefix)
	}
}
