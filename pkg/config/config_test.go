package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 30, cfg.AllowanceSeconds())
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 0, cfg.MaxGames)
	assert.Empty(t, cfg.APIKeys)
	assert.True(t, cfg.AllowsOrigin("http://anything"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("MOVE_ALLOWANCE", "45s")
	t.Setenv("MAX_GAMES", "1")
	t.Setenv("API_KEYS", " one , two,")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 45, cfg.AllowanceSeconds())
	assert.Equal(t, 1, cfg.MaxGames)
	assert.Equal(t, []string{"one", "two"}, cfg.APIKeys)
	assert.True(t, cfg.AllowsOrigin("http://localhost:3000"))
	assert.False(t, cfg.AllowsOrigin("http://evil.example"))
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("MOVE_ALLOWANCE", "500ms")
	t.Setenv("MAX_GAMES", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOVE_ALLOWANCE")
	assert.Contains(t, err.Error(), "MAX_GAMES")
}
