// Package detail implements the single-post view: the post itself, its
// comment list, comment submission, and deletion.
package detail

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/models"
	"github.com/starford/scrawl/internal/validate"
)

// API is the remote surface the controller needs.
type API interface {
	GetPost(ctx context.Context, id int) (*models.Post, error)
	ListComments(ctx context.Context, postID int) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error)
	DeletePost(ctx context.Context, id int) error
}

// AuthState reports whether a session is active.
type AuthState interface {
	IsAuthenticated() bool
}

// Controller fetches a post and its comments. The two loads are independent:
// a failed post load is terminal for the view, a failed comment load
// degrades to an empty comment list without touching the post.
type Controller struct {
	api    API
	auth   AuthState
	logger *slog.Logger

	mu       sync.Mutex
	postID   int
	post     *models.Post
	comments []models.Comment
	err      error
}

// NewController creates a Controller with no post loaded.
func NewController(api API, auth AuthState, logger *slog.Logger) *Controller {
	return &Controller{api: api, auth: auth, logger: logger, comments: []models.Comment{}}
}

// Load fetches the post and its comments concurrently.
func (c *Controller) Load(ctx context.Context, id int) {
	c.mu.Lock()
	c.postID = id
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		c.LoadPost(ctx, id)
		return nil
	})
	g.Go(func() error {
		c.LoadComments(ctx, id)
		return nil
	})
	_ = g.Wait()
}

// LoadPost fetches the post. Failure replaces the displayed post with a
// terminal error state.
func (c *Controller) LoadPost(ctx context.Context, id int) {
	p, err := c.api.GetPost(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.post = nil
		c.err = err
		return
	}
	c.post = p
	c.err = nil
}

// LoadComments fetches the comment list. Failure leaves the post state
// untouched and shows an empty list.
func (c *Controller) LoadComments(ctx context.Context, id int) {
	list, err := c.api.ListComments(ctx, id)
	if err != nil {
		c.logger.Warn("detail: comments load failed",
			slog.Int("post_id", id),
			slog.String("error", err.Error()))
		list = nil
	}
	if list == nil {
		list = []models.Comment{}
	}

	c.mu.Lock()
	c.comments = list
	c.mu.Unlock()
}

// SubmitComment posts text as a new comment and refetches the comment list.
// Blank (whitespace-only) text is rejected before any request is sent.
func (c *Controller) SubmitComment(ctx context.Context, text string) error {
	if !c.auth.IsAuthenticated() {
		return apperr.ErrAuthRequired
	}
	if err := validate.Comment(text); err != nil {
		return err
	}

	c.mu.Lock()
	id := c.postID
	c.mu.Unlock()

	if _, err := c.api.CreateComment(ctx, id, text); err != nil {
		return err
	}
	c.LoadComments(ctx, id)
	return nil
}

// Delete removes the loaded post. Confirmation and the authorship gate
// belong to the caller; the server enforces authorization either way.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	id := c.postID
	c.mu.Unlock()
	return c.api.DeletePost(ctx, id)
}

// Post returns the post with the given id when it is the loaded one.
// Together with Refresh this makes the detail view a toggle Collection.
func (c *Controller) Post(id int) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.post == nil || c.post.ID != id {
		return models.Post{}, false
	}
	return *c.post, true
}

// Refresh refetches the post only; the comment list keeps its snapshot.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	id := c.postID
	c.mu.Unlock()

	c.LoadPost(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Current returns a copy of the loaded post, or nil.
func (c *Controller) Current() *models.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.post == nil {
		return nil
	}
	p := *c.post
	return &p
}

// Comments returns the last-fetched comment list.
func (c *Controller) Comments() []models.Comment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Comment, len(c.comments))
	copy(out, c.comments)
	return out
}

// Err returns the terminal error of the last post load, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
