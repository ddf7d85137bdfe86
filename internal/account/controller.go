// Package account implements the profile, favorites, and user-search views.
package account

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/models"
	"github.com/starford/scrawl/internal/validate"
)

// API is the remote surface the account views need.
type API interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, username, email, bio string) (*models.User, error)
	UserPosts(ctx context.Context, userID int) ([]models.Post, error)
	MyFavorites(ctx context.Context) ([]models.Post, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// SessionStore is the slice of the session store the controller reads and
// mutates.
type SessionStore interface {
	IsAuthenticated() bool
	User() *models.User
	UpdateUser(u models.User) error
}

// Controller manages the viewer's own profile.
type Controller struct {
	api      API
	sessions SessionStore
	logger   *slog.Logger

	mu      sync.Mutex
	profile *models.User
	posts   []models.Post
}

// NewController creates a profile controller.
func NewController(api API, sessions SessionStore, logger *slog.Logger) *Controller {
	return &Controller{api: api, sessions: sessions, logger: logger, posts: []models.Post{}}
}

// LoadProfile fetches the profile and the viewer's own posts. The two
// fetches are independent: a failed post list degrades to empty while the
// profile still loads (and vice versa the profile error is returned).
func (c *Controller) LoadProfile(ctx context.Context) error {
	if !c.sessions.IsAuthenticated() {
		return apperr.ErrAuthRequired
	}
	viewer := c.sessions.User()

	var g errgroup.Group
	var profileErr error

	g.Go(func() error {
		me, err := c.api.Me(ctx)
		if err != nil {
			profileErr = err
			return nil
		}
		c.mu.Lock()
		c.profile = me
		c.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		posts, err := c.api.UserPosts(ctx, viewer.ID)
		if err != nil {
			c.logger.Warn("account: own posts load failed",
				slog.Int("user_id", viewer.ID),
				slog.String("error", err.Error()))
			posts = nil
		}
		if posts == nil {
			posts = []models.Post{}
		}
		c.mu.Lock()
		c.posts = posts
		c.mu.Unlock()
		return nil
	})
	_ = g.Wait()
	return profileErr
}

// UpdateProfile validates the fields, updates the server-side profile, and
// replaces the session's user. The token is untouched.
func (c *Controller) UpdateProfile(ctx context.Context, username, email, bio string) (*models.User, error) {
	if !c.sessions.IsAuthenticated() {
		return nil, apperr.ErrAuthRequired
	}
	if err := validate.Profile(username, email); err != nil {
		return nil, err
	}

	updated, err := c.api.UpdateMe(ctx, username, email, bio)
	if err != nil {
		return nil, err
	}
	if err := c.sessions.UpdateUser(*updated); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.profile = updated
	c.mu.Unlock()
	return updated, nil
}

// SearchUsers searches accounts. A blank query issues no request and
// returns an empty result.
func (c *Controller) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.User{}, nil
	}
	users, err := c.api.SearchUsers(ctx, q)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Profile returns a copy of the loaded profile, or nil.
func (c *Controller) Profile() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

// Posts returns the viewer's last-fetched posts.
func (c *Controller) Posts() []models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Post, len(c.posts))
	copy(out, c.posts)
	return out
}
