package account

import (
	"context"
	"log/slog"
	"sync"

	"github.com/starford/scrawl/internal/models"
)

// Favorites is the viewer's favorited-post collection. It satisfies the
// toggle Collection contract, so unliking or unfavoriting straight from
// the list refetches it.
type Favorites struct {
	api    API
	logger *slog.Logger

	mu    sync.Mutex
	items []models.Post
}

// NewFavorites creates an empty favorites collection.
func NewFavorites(api API, logger *slog.Logger) *Favorites {
	return &Favorites{api: api, logger: logger, items: []models.Post{}}
}

// Load refetches the favorites list. On failure the list is cleared and the
// error returned.
func (f *Favorites) Load(ctx context.Context) error {
	items, err := f.api.MyFavorites(ctx)
	if err != nil {
		f.mu.Lock()
		f.items = []models.Post{}
		f.mu.Unlock()
		return err
	}
	if items == nil {
		items = []models.Post{}
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Refresh re-reads the list from the server.
func (f *Favorites) Refresh(ctx context.Context) error {
	return f.Load(ctx)
}

// Post returns the post with the given id from the last-fetched list.
func (f *Favorites) Post(id int) (models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Items returns the last-fetched favorites.
func (f *Favorites) Items() []models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Post, len(f.items))
	copy(out, f.items)
	return out
}
