package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gamehub")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/gamehub", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://www.giantbomb.com/api", cfg.GiantBombURL)
	assert.Equal(t, 60, cfg.GiantBombRatePerMinute)
	assert.Empty(t, cfg.GiantBombAPIKey)
}

func TestLoad_EnvFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	env := "DATABASE_URL=postgres://file/gamehub\nPORT=9000\nGIANT_BOMB_API_KEY=secret\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Setenv("PORT", "9100")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/gamehub", cfg.DatabaseURL)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "secret", cfg.GiantBombAPIKey)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
