package di

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/config"
	"github.com/LeJamon/goExilon/internal/scenario"
)

func TestContainer(t *testing.T) {
	c := New()
	c.Register("a", 1)

	var builds atomic.Int32
	c.RegisterBuilder("b", func(c *Container) (interface{}, error) {
		builds.Add(1)
		a, err := c.Get("a")
		if err != nil {
			return nil, err
		}
		return a.(int) + 1, nil
	})

	_, ok := c.Lookup("b")
	assert.False(t, ok)

	b, err := c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, 2, b)

	// Built once
	_, err = c.Get("b")
	require.NoError(t, err)
	assert.Equal(t, int32(1), builds.Load())

	_, ok = c.Lookup("b")
	assert.True(t, ok)
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("c"))
	assert.Equal(t, []string{"a", "b"}, c.ServiceNames())

	_, err = c.Get("c")
	assert.Error(t, err)
	assert.Panics(t, func() { c.MustGet("c") })

	c.Clear()
	assert.Empty(t, c.ServiceNames())
}

func TestContainerRetriesFailedBuild(t *testing.T) {
	c := New()
	fail := true
	c.RegisterBuilder("x", func(c *Container) (interface{}, error) {
		if fail {
			return nil, errors.New("not yet")
		}
		return "ok", nil
	})

	_, err := c.Get("x")
	require.Error(t, err)

	fail = false
	x, err := c.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "ok", x)
}

func newProvider(t *testing.T, modify func(cfg *config.Config)) *Provider {
	t.Helper()
	cfg, err := config.LoadConfig(config.ConfigPaths{})
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Storage.Backend = "memory"
	cfg.Journal.DSN = filepath.Join(dir, "journal", "events.db")
	if modify != nil {
		modify(cfg)
	}
	require.NoError(t, config.ValidateConfig(cfg))

	p := NewProvider(New(), cfg, nil)
	require.NoError(t, p.RegisterAll())
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProvider(t *testing.T) {
	p := newProvider(t, nil)

	runner, err := p.Runner()
	require.NoError(t, err)

	journal, err := p.Journal()
	require.NoError(t, err)
	require.NotNil(t, journal)

	store, err := p.SnapshotStore()
	require.NoError(t, err)

	sc, err := scenario.Parse([]byte("name: di\nsteps: [{op: add_liquidity, value: '10'}]"))
	require.NoError(t, err)

	ctx := context.Background()
	report, err := runner.Run(ctx, sc)
	require.NoError(t, err)
	require.True(t, report.Success, report.Errors)

	// The runner shares the provider's journal and store
	run, err := journal.Run(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, scenario.OutcomePassed, run.Outcome)

	snap, err := store.Latest(ctx, report.RunID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Step)
}

func TestProviderWithoutJournal(t *testing.T) {
	p := newProvider(t, func(cfg *config.Config) { cfg.Journal.Driver = "" })

	journal, err := p.Journal()
	require.NoError(t, err)
	assert.Nil(t, journal)

	_, err = p.Runner()
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProviderPersistentBackends(t *testing.T) {
	for _, backend := range []string{"pebble", "leveldb"} {
		t.Run(backend, func(t *testing.T) {
			p := newProvider(t, func(cfg *config.Config) {
				cfg.Storage.Backend = backend
				cfg.Storage.Path = filepath.Join(t.TempDir(), "snapshots")
				cfg.Storage.CacheSize = 1
			})

			store, err := p.SnapshotStore()
			require.NoError(t, err)
			runs, err := store.Runs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, runs)
			assert.NoError(t, p.Close())
		})
	}
}
