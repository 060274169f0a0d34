package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}

func noEvent(t *testing.T, ch <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(d):
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(existing, []byte("v1"), 0o644))

	w, err := New(Config{Debounce: 30 * time.Millisecond, Extensions: []string{"txt"}}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Rewriting identical content is not a change.
	require.NoError(t, os.WriteFile(existing, []byte("v1"), 0o644))
	noEvent(t, w.Events(), 200*time.Millisecond)

	// Several quick writes collapse to one event.
	nda := filepath.Join(dir, "nda.txt")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(nda, []byte{'a' + byte(i)}, 0o644))
	}
	ev := nextEvent(t, w.Events())
	assert.Equal(t, Event{Path: nda, Op: OpChanged}, ev)
	noEvent(t, w.Events(), 200*time.Millisecond)

	// Ignored extension.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.bin"), []byte("x"), 0o644))
	noEvent(t, w.Events(), 200*time.Millisecond)

	require.NoError(t, os.Remove(existing))
	assert.Equal(t, Event{Path: existing, Op: OpRemoved}, nextEvent(t, w.Events()))

	cancel()
	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel not closed")
	}
}
