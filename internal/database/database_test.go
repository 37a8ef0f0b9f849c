package database_test

import (
	"testing"

	"gamehub/backend/internal/models"
	"gamehub/backend/internal/testkit"

	"github.com/stretchr/testify/assert"
)

func TestMigrate(t *testing.T) {
	db := testkit.NewDB(t)
	for _, model := range []any{&models.User{}, &models.Game{}, &models.Article{}, &models.Review{}} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "Email"))
	assert.True(t, db.Migrator().HasIndex(&models.Review{}, "GameID"))
}
