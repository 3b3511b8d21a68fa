package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes NewRootCmd with args against configPath and returns
// stdout. It resets the package-level flag vars cobra binds to, since
// cobra.Command reuses them across invocations within a test binary.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	flagConfigPath, flagJSON, flagVerbose, flagDebug, flagQuiet = "", false, false, false, false

	cmd := NewRootCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestCLIEndToEndSync(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")

	localRoot := filepath.Join(home, "local")
	ssdMount := filepath.Join(home, "ssd")
	require.NoError(t, os.MkdirAll(localRoot, 0o755))
	require.NoError(t, os.MkdirAll(ssdMount, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(localRoot, "a.txt"), []byte("hello"), 0o644))

	_, err := runCLI(t, cfgPath, "init", "laptop-a")
	require.NoError(t, err)

	_, err = runCLI(t, cfgPath, "set-ssd", ssdMount)
	require.NoError(t, err)

	_, err = runCLI(t, cfgPath, "add", localRoot, "docs", "--name", "docs")
	require.NoError(t, err)

	out, err := runCLI(t, cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "docs")

	out, err = runCLI(t, cfgPath, "diff", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "copy-local-to-ssd")
	assert.Contains(t, out, "a.txt")

	out, err = runCLI(t, cfgPath, "status", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "copy-local-to-ssd")

	out, err = runCLI(t, cfgPath, "sync", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Synced")

	ssdContent, err := os.ReadFile(filepath.Join(ssdMount, "docs", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(ssdContent))

	out, err = runCLI(t, cfgPath, "status", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = runCLI(t, cfgPath, "log", "docs")
	require.NoError(t, err)
	assert.Contains(t, out, "result=ok")
}

func TestCLIIgnoreSubcommands(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")

	_, err := runCLI(t, cfgPath, "init", "laptop-a")
	require.NoError(t, err)

	_, err = runCLI(t, cfgPath, "ignore", "add", "node_modules")
	require.NoError(t, err)

	out, err := runCLI(t, cfgPath, "ignore", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "node_modules")

	_, err = runCLI(t, cfgPath, "ignore", "remove", "node_modules")
	require.NoError(t, err)

	out, err = runCLI(t, cfgPath, "ignore", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "node_modules")
}

func TestCLIRemoveMapping(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")

	_, err := runCLI(t, cfgPath, "init", "laptop-a")
	require.NoError(t, err)

	_, err = runCLI(t, cfgPath, "add", "/tmp/somewhere", "docs", "--name", "docs")
	require.NoError(t, err)

	_, err = runCLI(t, cfgPath, "remove", "docs")
	require.NoError(t, err)

	out, err := runCLI(t, cfgPath, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "docs", "removed mapping must not reappear in the listing")
}
