package config

import (
	"fmt"
	"sync"

	"eve-tradehub/internal/db"
	"eve-tradehub/internal/engine"
	"eve-tradehub/internal/logger"
)

// Store is the live config source: defaults overlaid with whatever was
// persisted, updatable at runtime. Updates take effect on the next
// tick.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
	db  *db.DB
}

// NewStore loads persisted settings over the defaults.
func NewStore(d *db.DB) (*Store, error) {
	cfg := Default()
	found, err := d.LoadConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if found {
		logger.Info("Config", "Loaded persisted settings")
	} else {
		logger.Info("Config", "Using default settings")
	}
	return &Store{cfg: cfg, db: d}, nil
}

// Settings returns the current per-tick settings snapshot.
func (s *Store) Settings() (engine.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Settings(), nil
}

// Current returns a copy of the full config.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// Update validates, persists, and installs a new config. Invalid
// configs are rejected and the previous one stays live.
func (s *Store) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.db.SaveConfig(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.mu.Lock()
	s.cfg = &cfg
	s.mu.Unlock()
	logger.Success("Config", "Settings updated")
	return nil
}
