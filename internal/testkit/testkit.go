// Package testkit provides a throwaway database for package tests.
package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"gamehub/backend/internal/database"
	"gamehub/backend/internal/models"
	"gamehub/backend/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database that lives for the duration of t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "gamehub.db") + "?_busy_timeout=5000"
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	db.Logger = logger.Discard

	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// NewStore wraps NewDB in a store.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}

// Game inserts a game with the given title.
func Game(t *testing.T, s *store.Store, title string) models.Game {
	t.Helper()
	g := models.Game{Title: title, Description: title + " description"}
	require.NoError(t, s.Games.Create(context.Background(), &g))
	return g
}

// User inserts a user with the given name.
func User(t *testing.T, s *store.Store, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, s.Users.Create(context.Background(), &u))
	return u
}
