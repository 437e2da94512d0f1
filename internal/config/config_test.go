package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "STORAGE_BACKEND", "STORAGE_KEY", "TABLE_PREFIX", "DEBUG", "LOG_MAX_FILES", "AUTH_JWKS_URL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, DefaultStorageKey, cfg.StorageKey)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, 10, cfg.LogMaxFiles)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.AuthEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Environment(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		override   string
		wantPrefix string
		wantDebug  bool
	}{
		{name: "prod", env: "prod", wantPrefix: "prod_", wantDebug: false},
		{name: "test", env: "test", wantPrefix: "test_", wantDebug: true},
		{name: "unknown falls back to dev", env: "staging", wantPrefix: "dev_", wantDebug: true},
		{name: "explicit prefix wins", env: "prod", override: "custom_", wantPrefix: "custom_", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("TABLE_PREFIX", tt.override)
			t.Setenv("DEBUG", "")

			cfg := Load()
			assert.Equal(t, tt.wantPrefix, cfg.TablePrefix)
			assert.Equal(t, tt.wantDebug, cfg.Debug)
		})
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("LOG_MAX_FILES", "lots")
	assert.Equal(t, 10, Load().LogMaxFiles)

	t.Setenv("LOG_MAX_FILES", "3")
	assert.Equal(t, 3, Load().LogMaxFiles)
}

func TestSetupLogFile_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"server-2024-01-01T00-00-00.log", "server-2024-01-02T00-00-00.log", "server-2024-01-03T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	f, err := SetupLogFile(dir, "server", 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "server-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "server-2024-01-01T00-00-00.log"))
}

func TestNewLogger_WithoutLogDir(t *testing.T) {
	logger, closeFn, err := NewLogger(&Config{Environment: "prod"}, "server")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NoError(t, closeFn())
}
