package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/skillswap/internal/cache"
	"github.com/oggyb/skillswap/internal/config"
	"github.com/oggyb/skillswap/internal/db"
	"github.com/oggyb/skillswap/internal/repository"
)

// AppContext holds shared dependencies (repository, logger, clock, ids).
// Both stores are built from the same AppContext and therefore share one
// repository and one view of the user directory.
type AppContext struct {
	Repo       *repository.Repository
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
	BcryptCost int
}

// Option customizes an AppContext.
type Option func(*AppContext)

// WithClock overrides the clock. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(a *AppContext) { a.Now = now }
}

// WithIDGenerator overrides how record ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(a *AppContext) { a.NewID = newID }
}

// WithBcryptCost sets the cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(a *AppContext) { a.BcryptCost = cost }
}

// New creates a new AppContext
func New(repo *repository.Repository, logger *slog.Logger, opts ...Option) *AppContext {
	a := &AppContext{
		Repo:       repo,
		Logger:     logger,
		Now:        Now,
		NewID:      NewID,
		BcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Now is the default clock: UTC, millisecond precision, no monotonic reading,
// so timestamps survive a JSON round trip unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewID mints a time-ordered UUIDv7.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Open builds the backend selected by cfg, loads the state layout (seeding
// the directory on first start) and returns a ready AppContext.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*AppContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithBcryptCost(cfg.Auth.BcryptCost)}, opts...)
	a := New(repository.New(kv, logger), logger, opts...)

	seed := repository.Bootstrap(a.Now(), cfg.Auth.SeedPassword, a.BcryptCost)
	if err := a.Repo.Load(ctx, seed); err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	logger.Info("state layout ready", "backend", cfg.Store.Backend)
	return a, nil
}

// Close flushes the state and releases the backend.
func (a *AppContext) Close(ctx context.Context) error {
	return a.Repo.Close(ctx)
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.KV, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		redisCache := cache.NewRedisCache(cfg)
		if err := redisCache.Ping(ctx); err != nil {
			_ = redisCache.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, nil

	default:
		database, err := db.NewDB(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		return db.NewStore(database), nil
	}
}
