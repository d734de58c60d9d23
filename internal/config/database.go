package config

import "fmt"

// StorageConfig represents the [storage] section
// Configures the key-value store that holds state snapshots
type StorageConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// JournalConfig represents the [journal] section
// The SQL database that records scenario runs and their events
type JournalConfig struct {
	Driver       string `toml:"driver" mapstructure:"driver"`
	DSN          string `toml:"dsn" mapstructure:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns"`
}

// Validate performs validation on the storage configuration
func (s *StorageConfig) Validate() error {
	validBackends := []string{"pebble", "leveldb", "memory"}
	if !contains_slice(validBackends, s.Backend) {
		return fmt.Errorf("invalid storage backend: %s (valid options: pebble, leveldb, memory)", s.Backend)
	}

	if s.Backend != "memory" && s.Path == "" {
		return fmt.Errorf("storage path is required for backend %s", s.Backend)
	}

	if s.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", s.CacheSize)
	}

	validCompression := []string{"lz4", "none"}
	if !contains_slice(validCompression, s.Compression) {
		return fmt.Errorf("invalid compression: %s (valid options: lz4, none)", s.Compression)
	}

	return nil
}

// Enabled reports whether a journal database is configured
func (j *JournalConfig) Enabled() bool {
	return j.Driver != ""
}

// Validate performs validation on the journal configuration
func (j *JournalConfig) Validate() error {
	// An empty driver disables the journal
	if !j.Enabled() {
		return nil
	}

	validDrivers := []string{"sqlite", "postgres"}
	if !contains_slice(validDrivers, j.Driver) {
		return fmt.Errorf("invalid journal driver: %s (valid options: sqlite, postgres)", j.Driver)
	}

	if j.DSN == "" {
		return fmt.Errorf("journal dsn is required for driver %s", j.Driver)
	}

	if j.MaxOpenConns < 0 {
		return fmt.Errorf("max_open_conns must be non-negative, got %d", j.MaxOpenConns)
	}

	return nil
}

// contains_slice checks if a slice contains a specific string
func contains_slice(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
