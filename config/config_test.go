package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "fern-api", cfg.AppName)
	assert.Equal(t, 3004, cfg.Port)
	assert.Equal(t, "postgres", cfg.ProviderKind)
	assert.True(t, cfg.PermissionsEnabled)
	assert.False(t, cfg.AuthEnabled)
}

func TestFeaturesOverride(t *testing.T) {
	t.Setenv("FEATURES", `{"permissions": false, "auth": true, "unknown": true}`)

	cfg, err := New()
	require.NoError(t, err)

	assert.False(t, cfg.PermissionsEnabled)
	assert.True(t, cfg.AuthEnabled)
	assert.True(t, cfg.MultiGroupEnabled)
}

func TestFeaturesInvalidJSON(t *testing.T) {
	t.Setenv("FEATURES", "not-json")

	_, err := New()
	require.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER_NAME", "fern")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "host=localhost port=5432 user=fern password=secret dbname=fern sslmode=disable", cfg.DatabaseDSN())
}
