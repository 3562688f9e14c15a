package database_test

import (
	"context"
	"testing"

	"github.com/sagarc03/wally"
	"github.com/sagarc03/wally/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(tableName string) database.Config {
	return database.Config{
		Type:   "sqlite",
		DSN:    ":memory:",
		Tables: wally.Tables{Comments: tableName},
	}
}

func setupTestDB(t *testing.T, tableName string) database.Database {
	t.Helper()

	db, err := database.Connect(context.Background(), newTestConfig(tableName))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestConnect_SQLite(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t, "test_comments")

	assert.NoError(t, db.Ping(context.Background()))
}

func TestConnect_InvalidType(t *testing.T) {
	t.Parallel()

	cfg := database.Config{
		Type:   "invalid",
		DSN:    "whatever",
		Tables: wally.Tables{Comments: "test_comments"},
	}

	_, err := database.Connect(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_EmptyType(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig("test_comments")
	cfg.Type = ""

	_, err := database.Connect(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestConnect_InvalidTables(t *testing.T) {
	t.Parallel()

	_, err := database.Connect(context.Background(), newTestConfig("Robert'); DROP TABLE"))
	assert.Error(t, err)
}

func TestDatabase_Migrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "migrate_test")

	assert.Error(t, db.Validate(ctx), "validate should fail without tables")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
	assert.NoError(t, db.Validate(ctx))

	_, err := db.GetRepo().List(ctx, wally.ListQuery{Limit: 1})
	assert.NoError(t, err)
}

func TestDatabase_GetRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t, "getrepo_test")
	require.NoError(t, db.Migrate(ctx))

	repo := db.GetRepo()
	require.NotNil(t, repo)

	c, err := repo.Put(ctx, "alice", "hello")
	require.NoError(t, err)

	result, err := repo.List(ctx, wally.ListQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, c.ID, result.Items[0].ID)
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("auto migrate", func(t *testing.T) {
		cfg := newTestConfig("open_auto")
		cfg.AutoMigrate = true

		db, err := database.Open(ctx, cfg)
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		assert.NoError(t, db.Validate(ctx))
	})

	t.Run("unmigrated schema fails validation", func(t *testing.T) {
		_, err := database.Open(ctx, newTestConfig("open_manual"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate sqlite schema")
	})
}

func TestDatabase_Close(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.Connect(ctx, newTestConfig("close_test"))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
	assert.Error(t, db.Ping(ctx), "ping should fail after close")
}
