package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mxview/internal/watcher"
)

func startWatcher(t *testing.T, cfg watcher.Config) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(cfg)
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceManyCreates(t *testing.T) {
	dir := t.TempDir()
	onChange := startWatcher(t, watcher.Config{Root: dir, DebounceDur: 50 * time.Millisecond})

	// Rapid creates should coalesce into a single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d", i)), []byte("x"), 0644)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0644))

	onChange := startWatcher(t, watcher.Config{Root: dir, DebounceDur: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(path, []byte("changed content"), 0644))

	select {
	case <-onChange:
		t.Fatal("writes to an existing file should not signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_SignalsRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doomed")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	onChange := startWatcher(t, watcher.Config{Root: dir, DebounceDur: 20 * time.Millisecond})
	require.NoError(t, os.Remove(path))

	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification for removal")
	}
}

func TestWatcher_WatchesNestedDirectoriesWithinDepth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b", "c"), 0755))

	w, err := watcher.New(watcher.Config{Root: dir, MaxDepth: 1, DebounceDur: 20 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err)

	watched := w.WatchList()
	assert.Contains(t, watched, dir)
	assert.Contains(t, watched, filepath.Join(dir, "a"))
	assert.NotContains(t, watched, filepath.Join(dir, "a", "b"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "new"), []byte("x"), 0644))
	select {
	case <-onChange:
	case <-time.After(time.Second):
		t.Fatal("expected notification for nested create")
	}
}

func TestWatcher_StartRejectsMissingRoot(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
