package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/scrawl/internal/storage"
)

func watcherTestEnv(t *testing.T) (*Store, *storage.File) {
	t.Helper()
	provider, err := storage.NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(provider)
	if err != nil {
		t.Fatal(err)
	}
	return store, provider
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_RecordWrittenElsewhere(t *testing.T) {
	store, provider := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = store.Watch(ctx, provider.Path(), logger) }()

	time.Sleep(100 * time.Millisecond)

	record := []byte(`{"user": {"id": 1, "username": "testuser"}, "token": "t1"}`)
	if err := provider.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return store.IsAuthenticated()
	}, "session not reloaded after record write")
	if store.Token() != "t1" {
		t.Errorf("token = %q, want t1", store.Token())
	}
}

func TestWatch_RecordRemovedElsewhere(t *testing.T) {
	store, provider := watcherTestEnv(t)
	record := []byte(`{"user": {"id": 1, "username": "testuser"}, "token": "t1"}`)
	if err := provider.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store, err := NewStore(provider)
	if err != nil {
		t.Fatal(err)
	}
	if !store.IsAuthenticated() {
		t.Fatal("fixture should start authenticated")
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = store.Watch(ctx, provider.Path(), logger) }()

	time.Sleep(100 * time.Millisecond)

	if err := provider.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !store.IsAuthenticated()
	}, "session not cleared after record removal")
}

func TestWatch_ReturnsOnCancel(t *testing.T) {
	store, provider := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, provider.Path(), logger) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestWatch_IgnoresUnreadableRecord(t *testing.T) {
	store, provider := watcherTestEnv(t)
	record := []byte(`{"user": {"id": 1, "username": "testuser"}, "token": "t1"}`)
	if err := provider.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store, err := NewStore(provider)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = store.Watch(ctx, provider.Path(), logger) }()

	time.Sleep(100 * time.Millisecond)

	if err := provider.Save([]byte("{broken")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The broken record is ignored; the in-memory session stays.
	time.Sleep(300 * time.Millisecond)
	if !store.IsAuthenticated() || store.Token() != "t1" {
		t.Error("session must survive an unreadable record")
	}
}
