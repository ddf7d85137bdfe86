package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/scrawl/internal/session"
	"github.com/starford/scrawl/internal/storage"
	"github.com/starford/scrawl/internal/testutil"
)

func newStore(t *testing.T, f *testutil.FakeAPI) (*session.Store, *storage.File) {
	t.Helper()
	provider, err := storage.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	store, err := session.NewStore(provider)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.SetAuthClient(testutil.Client(t, f, store))
	return store, provider
}

func TestLoginPersistsSession(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, provider := newStore(t, f)

	if err := store.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatal("expected authenticated session")
	}
	if store.Token() != "t1" {
		t.Errorf("token = %q, want t1", store.Token())
	}
	if store.User().Username != "testuser" {
		t.Errorf("username = %q", store.User().Username)
	}

	// The record lands in the fixed file under the state dir.
	if filepath.Base(provider.Path()) != "auth-storage.json" {
		t.Errorf("record file = %q", filepath.Base(provider.Path()))
	}
	data, err := os.ReadFile(provider.Path())
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var rec session.Session
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.Token != "t1" || rec.User == nil || rec.User.Username != "testuser" {
		t.Errorf("record = %+v", rec)
	}
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, provider := newStore(t, f)

	err := store.Login(context.Background(), "testuser", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if store.IsAuthenticated() {
		t.Error("store must stay logged out")
	}
	if _, err := provider.Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("no record should be written, got %v", err)
	}

	// A failed login after a good one keeps the existing session.
	if err := store.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	_ = store.Login(context.Background(), "testuser", "wrong")
	if !store.IsAuthenticated() || store.Token() != "t1" {
		t.Error("prior session must survive a failed re-login")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, provider := newStore(t, f)
	if err := store.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.Logout(); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
	if store.IsAuthenticated() {
		t.Error("expected logged out state")
	}
	if store.User() != nil {
		t.Error("user must be nil after logout")
	}
	if _, err := provider.Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("record should be removed, got %v", err)
	}
}

func TestRehydrateFromRecord(t *testing.T) {
	dir := t.TempDir()
	provider, err := storage.NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	record := []byte(`{"user": {"id": 1, "username": "testuser", "email": "testuser@example.com"}, "token": "t1"}`)
	if err := provider.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	store, err := session.NewStore(provider)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatal("expected rehydrated session")
	}
	if store.Token() != "t1" || store.User().Username != "testuser" {
		t.Errorf("session = %+v", store.Current())
	}
}

func TestRehydrateUnreadableRecord(t *testing.T) {
	provider, err := storage.NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := provider.Save([]byte("{not json")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	store, err := session.NewStore(provider)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("unreadable record must start logged out")
	}
}

func TestRegisterDoesNotStartSession(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, _ := newStore(t, f)

	user, err := store.Register(context.Background(), "new@example.com", "newuser", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "newuser" {
		t.Errorf("username = %q", user.Username)
	}
	if store.IsAuthenticated() {
		t.Error("register must not log the user in")
	}
}

func TestUpdateUserKeepsToken(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, provider := newStore(t, f)
	if err := store.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	updated := *store.User()
	updated.Bio = "about me"
	if err := store.UpdateUser(updated); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if store.User().Bio != "about me" {
		t.Errorf("bio = %q", store.User().Bio)
	}
	if store.Token() != "t1" {
		t.Errorf("token = %q, must be unchanged", store.Token())
	}

	data, _ := provider.Load()
	var rec session.Session
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.User.Bio != "about me" || rec.Token != "t1" {
		t.Errorf("record = %+v", rec)
	}
}

func TestUserReturnsCopy(t *testing.T) {
	f := testutil.NewFakeAPI()
	store, _ := newStore(t, f)
	if err := store.Login(context.Background(), "testuser", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.User().Username = "mutated"
	if store.User().Username != "testuser" {
		t.Error("User must return a copy")
	}
}
