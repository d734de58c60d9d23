package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/LeJamon/goExilon/internal/config"
	"github.com/LeJamon/goExilon/internal/scenario"
	"github.com/LeJamon/goExilon/internal/storage/compression"
	"github.com/LeJamon/goExilon/internal/storage/database"
	"github.com/LeJamon/goExilon/internal/storage/database/leveldb"
	"github.com/LeJamon/goExilon/internal/storage/database/pebble"
	"github.com/LeJamon/goExilon/internal/storage/eventlog"
	"github.com/LeJamon/goExilon/internal/storage/snapshot"
)

// snapshotDBName is the database of the storage manager holding snapshots.
const snapshotDBName = "snapshots"

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	logger    *log.Logger
}

// NewProvider creates a new service provider. A nil logger discards.
func NewProvider(container *Container, cfg *config.Config, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Provider{
		container: container,
		config:    cfg,
		logger:    logger,
	}
}

// RegisterAll registers all services.
func (p *Provider) RegisterAll() error {
	// Register config
	p.container.Register(ServiceConfig, p.config)

	// Register builders for lazy instantiation
	p.registerStorageBuilders()
	p.registerScenarioBuilders()

	return nil
}

// registerStorageBuilders registers storage service builders.
func (p *Provider) registerStorageBuilders() {
	// Key-value manager builder
	p.container.RegisterBuilder(ServiceStorage, func(c *Container) (interface{}, error) {
		return newManager(p.config.Storage)
	})

	// Snapshot store builder
	p.container.RegisterBuilder(ServiceSnapshotStore, func(c *Container) (interface{}, error) {
		m, err := c.Get(ServiceStorage)
		if err != nil {
			return nil, err
		}
		db, err := m.(database.Manager).OpenDB(snapshotDBName)
		if err != nil {
			return nil, err
		}
		compressor, err := compression.Get(p.config.Storage.Compression)
		if err != nil {
			return nil, err
		}
		return snapshot.NewStore(db, compressor, p.config.Storage.CacheSize)
	})

	// Journal builder
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		cfg := p.config.Journal
		if !cfg.Enabled() {
			return nil, nil // No journal configured
		}
		if cfg.Driver == eventlog.DriverSQLite {
			if err := ensureParentDir(cfg.DSN); err != nil {
				return nil, err
			}
		}
		return eventlog.Open(context.Background(), cfg.Driver, cfg.DSN, cfg.MaxOpenConns)
	})
}

// registerScenarioBuilders registers the scenario runner builder.
func (p *Provider) registerScenarioBuilders() {
	p.container.RegisterBuilder(ServiceRunner, func(c *Container) (interface{}, error) {
		opts, err := p.config.SimOptions()
		if err != nil {
			return nil, err
		}

		// Get dependencies
		store, err := p.SnapshotStore()
		if err != nil {
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		journal, err := p.Journal()
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}

		options := []scenario.Option{
			scenario.WithLogger(p.logger),
			scenario.WithSnapshots(store, p.config.Simulation.SnapshotEvery),
		}
		if journal != nil {
			options = append(options, scenario.WithJournal(journal))
		}
		return scenario.NewRunner(opts, options...), nil
	})
}

// SnapshotStore returns the snapshot store, opening the storage backend on
// first use.
func (p *Provider) SnapshotStore() (*snapshot.Store, error) {
	s, err := p.container.Get(ServiceSnapshotStore)
	if err != nil {
		return nil, err
	}
	return s.(*snapshot.Store), nil
}

// Journal returns the event journal, or nil when none is configured.
func (p *Provider) Journal() (*eventlog.Journal, error) {
	j, err := p.container.Get(ServiceJournal)
	if err != nil {
		return nil, err
	}
	journal, _ := j.(*eventlog.Journal)
	return journal, nil
}

// Runner returns the scenario runner.
func (p *Provider) Runner() (*scenario.Runner, error) {
	r, err := p.container.Get(ServiceRunner)
	if err != nil {
		return nil, err
	}
	return r.(*scenario.Runner), nil
}

// Close releases the journal and the storage backend if they were built.
func (p *Provider) Close() error {
	var errs []error
	if j, ok := p.container.Lookup(ServiceJournal); ok {
		if journal, ok := j.(*eventlog.Journal); ok && journal != nil {
			errs = append(errs, journal.Close())
		}
	}
	if m, ok := p.container.Lookup(ServiceStorage); ok {
		errs = append(errs, m.(database.Manager).Close())
	}
	return errors.Join(errs...)
}

// newManager opens the key-value backend named by the storage section.
// CacheSize is in megabytes.
func newManager(cfg config.StorageConfig) (database.Manager, error) {
	switch cfg.Backend {
	case "memory":
		return database.NewMemoryManager(), nil
	case "pebble":
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, err
		}
		return pebble.NewManager(cfg.Path, int64(cfg.CacheSize)<<20), nil
	case "leveldb":
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, err
		}
		return leveldb.NewManager(cfg.Path, cfg.CacheSize<<20), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
