package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherReportsTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "grammar.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(tracked, []byte("a"), 0o600))

	changes := make(chan string, 16)
	w, err := New(func(path string) { changes <- path })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Add(tracked))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(tracked, []byte("b"), 0o600))

	select {
	case path := <-changes:
		abs, err := filepath.Abs(tracked)
		require.NoError(t, err)
		require.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	for len(changes) > 0 {
		abs, _ := filepath.Abs(tracked)
		require.Equal(t, abs, <-changes)
	}
}

func TestRunReturnsWhenClosed(t *testing.T) {
	w, err := New(func(string) {})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	require.NoError(t, w.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestAddMissingDirectoryFails(t *testing.T) {
	w, err := New(func(string) {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	require.Error(t, w.Add(filepath.Join(t.TempDir(), "missing", "g.yaml")))
}
