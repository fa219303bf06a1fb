package permission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Repository persists the permission configuration. Load returns (nil, nil)
// when nothing has been stored yet.
type Repository interface {
	Load(ctx context.Context) (*Config, error)
	Save(ctx context.Context, cfg Config) error
}

// Store holds the live permission configuration. Reads return copies; writes
// build the next snapshot, persist it, and only then swap it in, so a failed
// save leaves the current configuration untouched.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	repo   Repository
	logger *slog.Logger
}

func NewStore(repo Repository, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		cfg:    DefaultConfig(),
		repo:   repo,
		logger: logger,
	}
}

// Load replaces the in-memory configuration with the persisted one, if any.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	cfg, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load permission config: %w", err)
	}
	if cfg == nil {
		s.logger.Info("Store.Load: no stored permission config, using defaults")
		return nil
	}

	next := cfg.Clone()
	s.mu.Lock()
	s.cfg = next
	s.mu.Unlock()

	s.logger.Info("Store.Load: permission config loaded", "roles", len(next.Roles))
	return nil
}

func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

func (s *Store) Global() Permissions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Global
}

// Role returns the stored override for role, if one exists.
func (s *Store) Role(role string) (Permissions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.cfg.Roles[role]
	return p, ok
}

func (s *Store) ReplaceGlobal(ctx context.Context, p Permissions) (Config, error) {
	return s.update(ctx, func(cfg *Config) {
		cfg.Global = p
	})
}

func (s *Store) ReplaceRole(ctx context.Context, role string, p Permissions) (Config, error) {
	return s.update(ctx, func(cfg *Config) {
		cfg.Roles[role] = p
	})
}

func (s *Store) ApplyBulk(ctx context.Context, bulk BulkUpdate) (Config, error) {
	return s.update(ctx, func(cfg *Config) {
		if bulk.Roles != nil {
			roles := make(map[string]Permissions, len(bulk.Roles))
			for name, p := range bulk.Roles {
				roles[name] = p
			}
			cfg.Roles = roles
		}
		if bulk.Global != nil {
			cfg.Global = bulk.Global.ApplyTo(cfg.Global)
		}
	})
}

// update holds the write lock across the save so concurrent writers cannot
// interleave and drop each other's changes.
func (s *Store) update(ctx context.Context, mutate func(cfg *Config)) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.Clone()
	mutate(&next)

	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			s.logger.Error("Store.update: failed to persist permission config", "error", err)
			return Config{}, fmt.Errorf("save permission config: %w", err)
		}
	}

	s.cfg = next
	return next.Clone(), nil
}
