package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.User.ID = "alice"
	cfg.Log.Level = "debug"

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "tally.db"), got.Database.Path)
	assert.Equal(t, filepath.Join(dir, "logs"), got.Audit.Dir)
	assert.Equal(t, "debug", got.Log.Level)
	assert.Equal(t, int64(10<<20), got.Import.MaxBytes)
	assert.Equal(t, "alice", got.User.ID)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("data", "tally.db"), cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "logs", cfg.Audit.Dir)
	assert.Empty(t, cfg.User.ID)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("user:\n  id: bob\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.User.ID)
	assert.Equal(t, "info", got.Log.Level)
	assert.Equal(t, filepath.Join(dir, "data", "tally.db"), got.Database.Path)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default()))

	t.Setenv("TALLY_LOG_LEVEL", "warn")
	t.Setenv("TALLY_DATABASE_PATH", "/var/lib/tally/ledger.db")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", got.Log.Level)
	assert.Equal(t, "/var/lib/tally/ledger.db", got.Database.Path, "absolute paths are kept")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TALLY_USER_ID", "carol")
	got, err := FromEnv("/srv")
	require.NoError(t, err)
	assert.Equal(t, "carol", got.User.ID)
	assert.Equal(t, filepath.Join("/srv", "data", "tally.db"), got.Database.Path)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "level: info")
	assert.Contains(t, contents, "max_bytes: 10485760")
	assert.Contains(t, contents, "dir: logs")
}
