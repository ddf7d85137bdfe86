// Package testutil provides shared test helpers: an in-memory blogging API
// served over HTTP and pre-wired clients against it.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/scrawl/internal/gateway"
	"github.com/starford/scrawl/internal/models"
	"github.com/starford/scrawl/internal/remote"
)

// StaticToken is a gateway.TokenSource holding a fixed token.
type StaticToken string

// Token implements gateway.TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Server starts the fake API on an httptest server that is shut down with
// the test.
func Server(t *testing.T, f *FakeAPI) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.Router())
	t.Cleanup(srv.Close)
	return srv
}

// Client returns a typed API client against the fake server. tokens may be
// nil for an unauthenticated client.
func Client(t *testing.T, f *FakeAPI, tokens gateway.TokenSource) *remote.Client {
	t.Helper()
	srv := Server(t, f)
	gw, err := gateway.New(srv.URL, srv.Client(), tokens)
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	return remote.New(gw)
}

// SeedPost returns a deterministic post for fixtures.
func SeedPost(id int, title string) models.Post {
	return models.Post{
		ID:             id,
		Title:          title,
		Content:        "Content of " + title + " long enough to pass checks.",
		AuthorUsername: "testuser",
		UserID:         1,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
}

// Do is a tiny helper for raw requests against a handler.
func Do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
