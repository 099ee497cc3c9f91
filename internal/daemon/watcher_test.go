package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, debounce time.Duration, count *atomic.Int32) {
	t.Helper()
	w, err := NewWatcher([]string{dir}, debounce, func(string) { count.Add(1) })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
}

func TestWatcher_CoalescesBurstIntoOneCallback(t *testing.T) {
	dir := t.TempDir()
	var count atomic.Int32
	startWatcher(t, dir, 100*time.Millisecond, &count)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("page-%d.md", i)), []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return count.Load() == 1 },
		2*time.Second, 20*time.Millisecond, "burst should produce exactly one callback")

	// The timer must not fire again once the burst has settled.
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestWatcher_DebounceResetsOnContinuedWrites(t *testing.T) {
	dir := t.TempDir()
	var count atomic.Int32
	startWatcher(t, dir, 150*time.Millisecond, &count)

	// Keep writing at intervals shorter than the debounce window.
	for i := 0; i < 4; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte(fmt.Sprintf("rev %d", i)), 0o644))
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(0), count.Load(), "callback fired before writes settled")
	}

	require.Eventually(t, func() bool { return count.Load() == 1 },
		2*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresEditorChurn(t *testing.T) {
	dir := t.TempDir()
	var count atomic.Int32
	startWatcher(t, dir, 80*time.Millisecond, &count)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".page.md.swp"), []byte("swap"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md~"), []byte("backup"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("dotfile"), 0o644))

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
}

func TestWatcher_WatchesDirectoriesCreatedLater(t *testing.T) {
	dir := t.TempDir()
	var count atomic.Int32
	startWatcher(t, dir, 80*time.Millisecond, &count)

	sub := filepath.Join(dir, "tutorials")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.Eventually(t, func() bool { return count.Load() == 1 },
		2*time.Second, 20*time.Millisecond, "directory creation should trigger a rebuild")

	// Files inside the new directory must also be picked up.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "intro.md"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return count.Load() == 2 },
		2*time.Second, 20*time.Millisecond, "writes in a new directory should trigger a rebuild")
}
