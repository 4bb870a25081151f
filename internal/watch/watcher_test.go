package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string, calls *atomic.Int32) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := New(root, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithDebounce(100*time.Millisecond))
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	// fsnotify registers watches synchronously inside Run; give it a moment.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_DebouncesBurstIntoOneRebuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "portfolio"), 0o755))
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	for _, name := range []string{"a.mdx", "b.mdx", "c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "portfolio", name), []byte("---\n---\n"), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services"), 0o755))
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	require.NoError(t, os.WriteFile(filepath.Join(root, "services", ".draft.mdx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "services", "notes.txt"), []byte("x"), 0o644))

	time.Sleep(400 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestWatcher_PicksUpNewTypeDirectory(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "glossary"), 0o755))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(root, "glossary", "mdx.mdx"), []byte("---\n---\n"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_MissingRootFails(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "absent"), func(context.Context) error { return nil })
	require.Error(t, w.Run(context.Background()))
}
