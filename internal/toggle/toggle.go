// Package toggle flips the viewer's like and favorite relationship with a
// post. A toggle issues the inverse of the last-fetched flag and then
// refetches the whole owning collection; displayed counts never change
// until the server confirms them.
package toggle

import (
	"context"
	"log/slog"

	"github.com/starford/scrawl/internal/apperr"
	"github.com/starford/scrawl/internal/models"
)

// Collection is any fetched set of posts that can be re-read from the
// server: the feed, a post detail view, or the favorites list.
type Collection interface {
	Post(id int) (models.Post, bool)
	Refresh(ctx context.Context) error
}

// API issues the like and favorite mutation requests.
type API interface {
	Like(ctx context.Context, postID int) error
	Unlike(ctx context.Context, postID int) error
	Favorite(ctx context.Context, postID int) error
	Unfavorite(ctx context.Context, postID int) error
}

// AuthState reports whether a session is active.
type AuthState interface {
	IsAuthenticated() bool
}

// Toggler implements the toggle protocol over any Collection.
//
// Toggles on the same post are not coalesced. A second toggle issued before
// the first refetch resolves acts on the flag value the user last saw, so a
// rapid double toggle can briefly show stale state until the final refetch.
type Toggler struct {
	api    API
	auth   AuthState
	logger *slog.Logger
}

// New creates a Toggler.
func New(api API, auth AuthState, logger *slog.Logger) *Toggler {
	return &Toggler{api: api, auth: auth, logger: logger}
}

// ToggleLike flips the like flag for the post as last fetched by col.
func (t *Toggler) ToggleLike(ctx context.Context, col Collection, postID int) error {
	return t.flip(ctx, col, postID, "like",
		func(p models.Post) bool { return p.IsLiked },
		t.api.Like, t.api.Unlike)
}

// ToggleFavorite flips the favorite flag for the post as last fetched by col.
func (t *Toggler) ToggleFavorite(ctx context.Context, col Collection, postID int) error {
	return t.flip(ctx, col, postID, "favorite",
		func(p models.Post) bool { return p.IsFavorited },
		t.api.Favorite, t.api.Unfavorite)
}

func (t *Toggler) flip(
	ctx context.Context,
	col Collection,
	postID int,
	kind string,
	flag func(models.Post) bool,
	add, remove func(context.Context, int) error,
) error {
	if !t.auth.IsAuthenticated() {
		return apperr.ErrAuthRequired
	}

	p, ok := col.Post(postID)
	if !ok {
		return apperr.ErrNotFound
	}

	op, action := add, "add"
	if flag(p) {
		op, action = remove, "remove"
	}

	err := op(ctx, postID)
	if err != nil {
		t.logger.Warn("toggle: request failed",
			slog.String("kind", kind),
			slog.String("action", action),
			slog.Int("post_id", postID),
			slog.String("error", err.Error()))
	} else {
		t.logger.Info("toggle: applied",
			slog.String("kind", kind),
			slog.String("action", action),
			slog.Int("post_id", postID))
	}

	if rerr := col.Refresh(ctx); rerr != nil {
		t.logger.Warn("toggle: refetch failed",
			slog.String("kind", kind),
			slog.Int("post_id", postID),
			slog.String("error", rerr.Error()))
		if err == nil {
			err = rerr
		}
	}
	return err
}
