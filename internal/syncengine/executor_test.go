package syncengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCopyLocalToSSD(t *testing.T) {
	t.Parallel()

	localRoot, ssdRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(localRoot, "a.txt"), "content")

	exec := NewExecutor(nil, nil)
	items := []PlanItem{{Path: "a.txt", Op: CopyLocalToSSD}}

	report, merged, err := exec.Execute(context.Background(), localRoot, ssdRoot, StateMap{}, items, false)
	require.NoError(t, err)

	data, readErr := os.ReadFile(filepath.Join(ssdRoot, "a.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "content", string(data))
	assert.Contains(t, merged, "a.txt")
	assert.Equal(t, 1, report.Counts[CopyLocalToSSD])
}

func TestExecuteDeleteLocalPrunesEmptyDirs(t *testing.T) {
	t.Parallel()

	localRoot, ssdRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(localRoot, "sub", "dir", "a.txt"), "content")

	exec := NewExecutor(nil, nil)
	items := []PlanItem{{Path: "sub/dir/a.txt", Op: DeleteLocal}}

	local := StateMap{"sub/dir/a.txt": {Size: 7}}

	_, merged, err := exec.Execute(context.Background(), localRoot, ssdRoot, local, items, false)
	require.NoError(t, err)
	assert.NotContains(t, merged, "sub/dir/a.txt")

	_, statErr := os.Stat(filepath.Join(localRoot, "sub"))
	assert.True(t, os.IsNotExist(statErr), "empty ancestor directories must be pruned up to the root")
}

func TestExecuteDryRunMutatesNothing(t *testing.T) {
	t.Parallel()

	localRoot, ssdRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(localRoot, "a.txt"), "content")

	exec := NewExecutor(nil, nil)
	items := []PlanItem{{Path: "a.txt", Op: CopyLocalToSSD}}

	report, merged, err := exec.Execute(context.Background(), localRoot, ssdRoot, StateMap{}, items, true)
	require.NoError(t, err)
	assert.Nil(t, merged)
	assert.Equal(t, 1, report.Counts[CopyLocalToSSD])

	_, statErr := os.Stat(filepath.Join(ssdRoot, "a.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecuteConflictBothRenamesLocalThenCopiesSSD(t *testing.T) {
	t.Parallel()

	localRoot, ssdRoot := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(localRoot, "a.txt"), "local-version")
	writeFile(t, filepath.Join(ssdRoot, "a.txt"), "ssd-version")

	exec := NewExecutor(nil, nil)
	items := []PlanItem{{Path: "a.txt", Op: ConflictBoth, LocalSuffix: ".conflict.M.100"}}

	_, merged, err := exec.Execute(context.Background(), localRoot, ssdRoot, StateMap{"a.txt": {}}, items, false)
	require.NoError(t, err)

	renamed, err := os.ReadFile(filepath.Join(localRoot, "a.txt.conflict.M.100"))
	require.NoError(t, err)
	assert.Equal(t, "local-version", string(renamed))

	current, err := os.ReadFile(filepath.Join(localRoot, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ssd-version", string(current))

	assert.Contains(t, merged, "a.txt")
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	localRoot, ssdRoot := t.TempDir(), t.TempDir()
	// "missing.txt" does not exist under localRoot, so the copy fails.
	items := []PlanItem{
		{Path: "missing.txt", Op: CopyLocalToSSD},
		{Path: "never-reached.txt", Op: CopyLocalToSSD},
	}

	exec := NewExecutor(nil, nil)

	report, merged, err := exec.Execute(context.Background(), localRoot, ssdRoot, StateMap{}, items, false)
	require.Error(t, err)
	assert.Nil(t, merged)
	require.Len(t, report.Errored, 1)
	assert.Equal(t, "missing.txt", report.Errored[0].Path)
}
