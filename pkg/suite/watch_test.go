package suite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	// give the watcher time to attach before producing events
	time.Sleep(200 * time.Millisecond)
	writeFixture(t, dir, "smoke.yml", "name: smoke\n")

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("expected callback after fixture change")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on cancellation")
	}
}

func TestWatch_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func() { fired <- struct{}{} })
	}()

	time.Sleep(200 * time.Millisecond)
	writeFixture(t, dir, "notes.txt", "not a fixture")

	select {
	case <-fired:
		t.Fatal("non-fixture file should not trigger a callback")
	case <-time.After(watchDebounce * 3):
	}

	cancel()
	<-done
}

func TestWatch_BadDir(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/path/for/watch", func() {})
	require.Error(t, err)
}
