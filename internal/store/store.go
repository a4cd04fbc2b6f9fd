// Package store selects and opens the storage backend shared by every
// domain package.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/events"
	"github.com/sportsreg/sportsreg/internal/notifications"
	"github.com/sportsreg/sportsreg/internal/platform/db"
	"github.com/sportsreg/sportsreg/internal/registrations"
	"github.com/sportsreg/sportsreg/internal/store/memory"
	"github.com/sportsreg/sportsreg/internal/store/postgres"
	"github.com/sportsreg/sportsreg/internal/store/postgres/migrations"
	"github.com/sportsreg/sportsreg/internal/users"
)

// Backend names accepted by Open.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// UserRepository combines the credential store with user listing.
type UserRepository interface {
	auth.Repository
	users.RepositoryPort
}

// Config selects and parameterises a backend.
type Config struct {
	Backend       string
	DSN           string
	MaxConns      int32
	RunMigrations bool
}

// Store bundles the repositories of one backend.
type Store struct {
	Users         UserRepository
	Events        events.Repository
	Registrations registrations.Repository
	Teams         registrations.TeamRepository
	Notifications notifications.Repository

	closeFn func()
}

// Close releases backend resources.
func (s *Store) Close() {
	if s != nil && s.closeFn != nil {
		s.closeFn()
	}
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case BackendMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return NewMemory(memory.New()), nil
	case BackendPostgres, "":
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

// NewMemory wraps an in-memory database.
func NewMemory(mem *memory.DB) *Store {
	return &Store{
		Users:         mem.Users(),
		Events:        mem.Events(),
		Registrations: mem.Registrations(),
		Teams:         mem.Teams(),
		Notifications: mem.Notifications(),
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store: postgres backend requires a DSN")
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, cfg.DSN, migrations.FS); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}
	pool, err := db.New(ctx, cfg.DSN, cfg.MaxConns)
	if err != nil {
		return nil, err
	}
	return &Store{
		Users:         postgres.NewUserRepository(pool),
		Events:        postgres.NewEventRepository(pool),
		Registrations: postgres.NewRegistrationRepository(pool),
		Teams:         postgres.NewTeamRepository(pool),
		Notifications: postgres.NewNotificationRepository(pool),
		closeFn:       pool.Close,
	}, nil
}
