// Package apptest wires an AppContext over an isolated in-memory SQLite
// database for service tests.
package apptest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/skillswap/internal/app"
	"github.com/oggyb/skillswap/internal/db"
	"github.com/oggyb/skillswap/internal/logger"
	"github.com/oggyb/skillswap/internal/repository"
)

// Epoch is the first instant handed out by Clock.
var Epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// SeedPassword is the password of every bootstrap account.
const SeedPassword = "password"

// Clock returns a clock that advances one second per reading.
func Clock() func() time.Time {
	var mu sync.Mutex
	next := Epoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

// IDs returns a generator of readable sequential ids ("id-1", "id-2", ...).
func IDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

// Fixture bundles what a service test needs.
type Fixture struct {
	App   *app.AppContext
	Store *db.Store
}

// New opens a fresh in-memory database, loads the bootstrap directory and
// returns an AppContext with a ticking clock and sequential ids.
func New(t *testing.T) *Fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: db.NewGormLogger(logger.Discard(), gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	store := db.NewStore(database)

	log := logger.Discard()
	appCtx := app.New(repository.New(store, log), log,
		app.WithClock(Clock()),
		app.WithIDGenerator(IDs()),
		app.WithBcryptCost(bcrypt.MinCost),
	)
	require.NoError(t, appCtx.Repo.Load(context.Background(), repository.Bootstrap(Epoch, SeedPassword, bcrypt.MinCost)))

	return &Fixture{App: appCtx, Store: store}
}

// Reload builds a second repository over the same database, as a restarted
// process would.
func (f *Fixture) Reload(t *testing.T) *repository.Repository {
	t.Helper()
	repo := repository.New(f.Store, logger.Discard())
	require.NoError(t, repo.Load(context.Background(), nil))
	return repo
}
