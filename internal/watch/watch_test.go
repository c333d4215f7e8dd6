package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dir string, opts ...Option) <-chan Event {
	t.Helper()
	w, err := New(dir, append([]Option{WithDebounce(20 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := make(chan Event, 16)
	go func() {
		_ = w.Run(ctx, func(ev Event) { events <- ev })
	}()
	return events
}

func waitFor(t *testing.T, events <-chan Event, want Event) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

func TestRunReportsChangeAndRemoval(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, dir)
	path := filepath.Join(dir, "mod-a.yaml")

	require.NoError(t, os.WriteFile(path, []byte("tenant: ModA\n"), 0o644))
	waitFor(t, events, Event{Path: path, Op: OpChanged})

	require.NoError(t, os.Remove(path))
	waitFor(t, events, Event{Path: path, Op: OpRemoved})
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, dir, WithFilter(func(p string) bool { return strings.HasSuffix(p, ".yaml") }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	path := filepath.Join(dir, "mod-a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenant: ModA\n"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, path, ev.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for manifest event")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx, func(Event) {}), context.Canceled)
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "changed", OpChanged.String())
	assert.Equal(t, "removed", OpRemoved.String())
}
