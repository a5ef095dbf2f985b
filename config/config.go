// Package config loads service configuration from a YAML file with
// environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Cursors  CursorsConfig  `yaml:"cursors"`
	Sync     SyncConfig     `yaml:"sync"`
}

// DatabaseConfig locates the relational store the pipelines read from.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig locates the search index the pipelines write to.
type SearchConfig struct {
	Address      string `yaml:"address"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkWorkers int    `yaml:"chunk_workers"`
}

// CursorsConfig locates the watermark store.
type CursorsConfig struct {
	Path string `yaml:"path"`
}

// SyncConfig tunes the replication run.
type SyncConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	Workers    int           `yaml:"workers"`
	Interval   time.Duration `yaml:"interval"`
	BatchSizes map[string]int `yaml:"batch_sizes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "forum.db"},
		Search: SearchConfig{
			Address:      "http://localhost:9200",
			ChunkSize:    100,
			ChunkWorkers: 4,
		},
		Cursors: CursorsConfig{Path: "cursors"},
		Sync: SyncConfig{
			BatchSize: 500,
			Workers:   3,
			Interval:  time.Minute,
		},
	}
}

// Load reads a YAML file over the defaults, then applies FORUMSYNC_*
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipelines cannot run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Search.Address == "" {
		return fmt.Errorf("search.address is required")
	}
	if c.Search.ChunkSize <= 0 {
		return fmt.Errorf("search.chunk_size must be greater than 0")
	}
	if c.Search.ChunkWorkers <= 0 {
		return fmt.Errorf("search.chunk_workers must be greater than 0")
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync.batch_size must be greater than 0")
	}
	if c.Sync.Workers <= 0 {
		return fmt.Errorf("sync.workers must be greater than 0")
	}
	for name, n := range c.Sync.BatchSizes {
		if n <= 0 {
			return fmt.Errorf("sync.batch_sizes.%s must be greater than 0", name)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FORUMSYNC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FORUMSYNC_SEARCH_ADDRESS"); v != "" {
		cfg.Search.Address = v
	}
	if v := os.Getenv("FORUMSYNC_CURSORS_PATH"); v != "" {
		cfg.Cursors.Path = v
	}
	if v := os.Getenv("FORUMSYNC_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sync.BatchSize = n
		}
	}
	if v := os.Getenv("FORUMSYNC_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sync.Interval = d
		}
	}
}
