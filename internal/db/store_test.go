package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/skillswap/internal/db"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/logger"
	"github.com/oggyb/skillswap/internal/repository"
)

// setupTestDB opens an isolated in-memory SQLite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		Logger:  db.NewGormLogger(logger.Discard(), gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func TestGetMissingKey(t *testing.T) {
	store := db.NewStore(setupTestDB(t))

	_, err := store.Get(context.Background(), repository.KeyUsers)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestApplyUpsertsAndDeletes(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(setupTestDB(t))

	require.NoError(t, store.Apply(ctx, repository.Batch{Set: map[string][]byte{
		"users":   []byte(`[]`),
		"ratings": []byte(`[{"id":"r1"}]`),
	}}))

	// overwrite one key, delete the other, delete a key that never existed
	require.NoError(t, store.Apply(ctx, repository.Batch{
		Set:    map[string][]byte{"users": []byte(`[{"id":"u1"}]`)},
		Delete: []string{"ratings", "currentUser"},
	}))

	got, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"u1"}]`, string(got))

	_, err = store.Get(ctx, "ratings")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	store := db.NewStore(database)

	require.NoError(t, store.Apply(ctx, repository.Batch{Set: map[string][]byte{"users": []byte(`[1]`)}}))

	// nil binds as NULL and violates NOT NULL; users must roll back with it
	err := store.Apply(ctx, repository.Batch{Set: map[string][]byte{
		"users":   []byte(`[2]`),
		"ratings": nil,
	}})
	require.Error(t, err)

	got, err := store.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestStoreBacksRepository(t *testing.T) {
	ctx := context.Background()
	store := db.NewStore(setupTestDB(t))

	repo := repository.New(store, logger.Discard())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Load(ctx, repository.Bootstrap(now, "password", 4)))

	reloaded := repository.New(store, logger.Discard())
	require.NoError(t, reloaded.Load(ctx, nil))
	assert.Equal(t, repo.Snapshot(), reloaded.Snapshot())
}
