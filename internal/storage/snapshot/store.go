package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goExilon/internal/storage/compression"
	"github.com/LeJamon/goExilon/internal/storage/database"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

const (
	snapPrefix   = "snap/"
	latestPrefix = "latest/"
)

// SnapshotKey returns the key of the snapshot of run at block. The block is
// zero padded so keys sort by block.
func SnapshotKey(run string, block uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", snapPrefix, run, block))
}

// LatestKey returns the key that points at the newest snapshot of run.
func LatestKey(run string) []byte {
	return []byte(latestPrefix + run)
}

// Store persists snapshots. Reads go through an LRU cache of decoded
// snapshots.
type Store struct {
	db         database.DB
	compressor compression.Compressor
	handle     codec.MsgpackHandle
	cache      *lru.Cache[string, *Snapshot]
}

// NewStore creates a store over db. cacheSize is the number of decoded
// snapshots kept in memory.
func NewStore(db database.DB, compressor compression.Compressor, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 128 // Default cache size
	}
	cache, err := lru.New[string, *Snapshot](cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:         db,
		compressor: compressor,
		cache:      cache,
	}
	s.handle.WriteExt = true
	return s, nil
}

func (s *Store) encode(snap *Snapshot) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, &s.handle).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return s.compressor.Compress(buf)
}

func (s *Store) decode(data []byte) (*Snapshot, error) {
	raw, err := s.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := codec.NewDecoderBytes(raw, &s.handle).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Put stores snap and moves the run's latest pointer to it, in one batch.
func (s *Store) Put(ctx context.Context, snap *Snapshot) error {
	if snap.Run == "" || strings.Contains(snap.Run, "/") {
		return fmt.Errorf("invalid run id %q", snap.Run)
	}
	data, err := s.encode(snap)
	if err != nil {
		return err
	}

	key := SnapshotKey(snap.Run, snap.Block)
	ops := []database.BatchOperation{
		{Type: database.BatchPut, Key: key, Value: data},
		{Type: database.BatchPut, Key: LatestKey(snap.Run), Value: []byte(strconv.FormatUint(snap.Block, 10))},
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	s.cache.Add(string(key), snap)
	return nil
}

// Get returns the snapshot of run at block.
func (s *Store) Get(ctx context.Context, run string, block uint64) (*Snapshot, error) {
	key := SnapshotKey(run, block)
	if snap, ok := s.cache.Get(string(key)); ok {
		return snap, nil
	}

	data, err := s.db.Read(ctx, key)
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: run %s block %d", ErrNotFound, run, block)
		}
		return nil, err
	}
	snap, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", key, err)
	}
	s.cache.Add(string(key), snap)
	return snap, nil
}

// Latest returns the newest snapshot of run.
func (s *Store) Latest(ctx context.Context, run string) (*Snapshot, error) {
	data, err := s.db.Read(ctx, LatestKey(run))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: run %s", ErrNotFound, run)
		}
		return nil, err
	}
	block, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("latest pointer of run %s: %w", run, err)
	}
	return s.Get(ctx, run, block)
}

// Blocks lists the blocks that have a snapshot in run, ascending.
func (s *Store) Blocks(ctx context.Context, run string) ([]uint64, error) {
	prefix := []byte(snapPrefix + run + "/")
	var blocks []uint64
	err := s.scan(ctx, prefix, func(key, _ []byte) error {
		block, err := strconv.ParseUint(string(key[len(prefix):]), 10, 64)
		if err != nil {
			return fmt.Errorf("bad snapshot key %q: %w", key, err)
		}
		blocks = append(blocks, block)
		return nil
	})
	return blocks, err
}

// Runs lists the runs that have at least one snapshot, in key order.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	var runs []string
	err := s.scan(ctx, []byte(latestPrefix), func(key, _ []byte) error {
		runs = append(runs, string(key[len(latestPrefix):]))
		return nil
	})
	return runs, err
}

func (s *Store) scan(ctx context.Context, prefix []byte, fn func(key, value []byte) error) error {
	iter, err := s.db.Iterator(ctx, prefix, database.PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}
