// Package feed implements the paginated, searchable post collection.
// Every load is a full refetch; the controller owns its snapshot
// exclusively and discards it on the next load.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/starford/scrawl/internal/models"
)

// PageSize is the fixed window size of a feed request.
const PageSize = 20

// API is the remote surface the controller needs.
type API interface {
	ListPosts(ctx context.Context, skip, limit int, search string) (json.RawMessage, error)
}

// Controller fetches pages of posts. Concurrent loads are not coalesced or
// cancelled; the last one to resolve wins.
type Controller struct {
	api    API
	logger *slog.Logger

	mu         sync.Mutex
	items      []models.Post
	page       int
	totalPages int
	query      string
	loaded     bool
	loading    bool
	err        error
}

// NewController creates a Controller with an empty single-page snapshot.
func NewController(api API, logger *slog.Logger) *Controller {
	return &Controller{api: api, logger: logger, page: 1, totalPages: 1, items: []models.Post{}}
}

// Load fetches the given page with an optional search term and replaces the
// snapshot. Changing the search term resets the page to 1. On request
// failure the items are cleared, the error state is set, and the page count
// keeps its previous value.
func (c *Controller) Load(ctx context.Context, page int, query string) {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if c.loaded && query != c.query {
		page = 1
	}
	c.loaded = true
	c.loading = true
	c.page = page
	c.query = query
	c.mu.Unlock()

	raw, err := c.api.ListPosts(ctx, (page-1)*PageSize, PageSize, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.items = []models.Post{}
		c.err = err
		return
	}

	items, pages, derr := DecodePage(raw)
	if derr != nil {
		c.logger.Warn("feed: unexpected list payload",
			slog.Int("page", page),
			slog.String("error", derr.Error()))
	}
	// Keep the resolved page inside the reported page count.
	if page > pages {
		page = pages
	}
	c.items = items
	c.page = page
	c.totalPages = pages
	c.err = nil
}

// Search loads page 1 with a new search term.
func (c *Controller) Search(ctx context.Context, query string) {
	c.Load(ctx, 1, query)
}

// Refresh refetches the current page and query.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page, query := c.page, c.query
	c.mu.Unlock()

	c.Load(ctx, page, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns the last-fetched page.
func (c *Controller) Snapshot() models.FeedPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]models.Post, len(c.items))
	copy(items, c.items)
	return models.FeedPage{Items: items, CurrentPage: c.page, TotalPages: c.totalPages}
}

// Post returns the post with the given id from the last-fetched snapshot.
func (c *Controller) Post(id int) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.items {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// Query returns the active search term.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Loading reports whether a load is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the error state of the last load, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
