package syncengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ssd-syncer/ssd-syncer/internal/pathutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScannerFindsFilesAndHashes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "world")

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher(nil)
	require.NoError(t, err)

	state, err := s.Scan(context.Background(), SideLocal, root, m, nil)
	require.NoError(t, err)
	require.Len(t, state, 2)

	a, ok := state["a.txt"]
	require.True(t, ok)
	require.Equal(t, int64(5), a.Size)
	require.NotNil(t, a.Hash)

	b, ok := state["sub/b.txt"]
	require.True(t, ok)
	require.Equal(t, int64(5), b.Size)
	require.NotNil(t, b.Hash)
}

func TestScannerReusesBaselineHash(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	info, err := os.Stat(path)
	require.NoError(t, err)

	fakeHash := [32]byte{1, 2, 3}
	baseline := StateMap{
		"a.txt": {Size: info.Size(), Mtime: TruncateToSeconds(info.ModTime()), Hash: &fakeHash},
	}

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher(nil)
	require.NoError(t, err)

	state, err := s.Scan(context.Background(), SideLocal, root, m, baseline)
	require.NoError(t, err)

	a, ok := state["a.txt"]
	require.True(t, ok)
	require.Equal(t, fakeHash, *a.Hash, "unchanged size+mtime must reuse the baseline hash rather than rehash")
}

func TestScannerRehashesOnMtimeChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	writeFile(t, path, "hello")

	fakeHash := [32]byte{9, 9, 9}
	staleMtime := time.Now().Add(-time.Hour)
	baseline := StateMap{
		"a.txt": {Size: 5, Mtime: TruncateToSeconds(staleMtime), Hash: &fakeHash},
	}

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher(nil)
	require.NoError(t, err)

	state, err := s.Scan(context.Background(), SideLocal, root, m, baseline)
	require.NoError(t, err)

	a := state["a.txt"]
	require.NotEqual(t, fakeHash, *a.Hash, "stale mtime must trigger a fresh hash")
}

func TestScannerRespectsIgnorePatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "x")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "y")

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher([]string{"node_modules"})
	require.NoError(t, err)

	state, err := s.Scan(context.Background(), SideLocal, root, m, nil)
	require.NoError(t, err)
	require.Contains(t, state, "keep.txt")
	require.NotContains(t, state, "node_modules/pkg/index.js")
}

func TestScannerRecoversPerFileError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), "x")

	unreadable := filepath.Join(root, "unreadable.txt")
	writeFile(t, unreadable, "secret")
	require.NoError(t, os.Chmod(unreadable, 0o000))

	t.Cleanup(func() { _ = os.Chmod(unreadable, 0o644) })

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher(nil)
	require.NoError(t, err)

	state, err := s.Scan(context.Background(), SideLocal, root, m, nil)
	require.NoError(t, err, "a single unreadable file must not fail the whole scan")
	require.Contains(t, state, "keep.txt")
	require.NotContains(t, state, "unreadable.txt", "unreadable file is omitted, not erroring the scan")
}

func TestScannerMissingRootIsFatal(t *testing.T) {
	t.Parallel()

	s := NewScanner(nil, 2)
	m, err := pathutil.NewMatcher(nil)
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), SideLocal, filepath.Join(t.TempDir(), "missing"), m, nil)
	require.Error(t, err)
}
