package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Machine = "laptop-a"
	cfg.SSDMount = "/mnt/ssd"
	cfg.ConflictStrategy = "newer-wins"
	cfg.Ignore = []string{"*.tmp", "node_modules"}
	require.NoError(t, cfg.AddMapping(MappingConfig{Name: "docs", LocalRoot: "/home/a/docs", SSDRelativeRoot: "docs"}))

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, cfg.Machine, loaded.Machine)
	assert.Equal(t, cfg.SSDMount, loaded.SSDMount)
	assert.Equal(t, cfg.ConflictStrategy, loaded.ConflictStrategy)
	assert.Equal(t, cfg.Ignore, loaded.Ignore)
	require.Len(t, loaded.Mappings, 1)
	assert.Equal(t, "docs", loaded.Mappings[0].Name)
}

func TestSaveIsAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := validConfig()
	require.NoError(t, Save(path, cfg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp file should survive a successful save")
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`conflict_strategy = "bogus"`), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("machine = \"m\"\ntypo_field = 1\n"), 0o644))

	_, err := Load(path, nil)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestFindMapping(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.AddMapping(MappingConfig{Name: "docs", LocalRoot: "/a", SSDRelativeRoot: "docs"}))

	m, ok := cfg.FindMapping("docs")
	assert.True(t, ok)
	assert.Equal(t, "/a", m.LocalRoot)

	_, ok = cfg.FindMapping("missing")
	assert.False(t, ok)
}

func TestAddMappingRejectsDuplicate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.AddMapping(MappingConfig{Name: "docs", LocalRoot: "/a", SSDRelativeRoot: "docs"}))

	err := cfg.AddMapping(MappingConfig{Name: "docs", LocalRoot: "/b", SSDRelativeRoot: "docs2"})
	require.Error(t, err)
}

func TestRemoveMapping(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.AddMapping(MappingConfig{Name: "docs", LocalRoot: "/a", SSDRelativeRoot: "docs"}))

	assert.True(t, cfg.RemoveMapping("docs"))
	assert.False(t, cfg.RemoveMapping("docs"))
	assert.Empty(t, cfg.Mappings)
}

func TestIgnoreListMutators(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.AddIgnore("*.tmp")
	cfg.AddIgnore("*.tmp") // duplicate, no-op
	assert.Equal(t, []string{"*.tmp"}, cfg.Ignore)

	cfg.ResetIgnore([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, cfg.Ignore)

	assert.True(t, cfg.RemoveIgnore("a"))
	assert.False(t, cfg.RemoveIgnore("a"))
	assert.Equal(t, []string{"b"}, cfg.Ignore)
}
