package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "dict.csv")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("id,value\n"), 0o644))

	calls := make(chan struct{}, 8)
	w, err := New([]string{tracked}, 100*time.Millisecond, func() { calls <- struct{}{} })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	select {
	case <-calls:
		t.Fatal("untracked file triggered a callback")
	case <-time.After(400 * time.Millisecond):
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(tracked, []byte("id,value\nA,1\n"), 0o644))
	}
	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("no callback after tracked file changed")
	}
	select {
	case <-calls:
		t.Fatal("burst produced more than one callback")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestTrackMissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent", "dict.csv")}, time.Millisecond, func() {})
	require.Error(t, err)
}
