package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/starford/scrawl/internal/models"
)

// ListPosts fetches one window of the post collection. The raw body is
// returned undecoded: the server answers with either a bare array or a
// paged envelope, and the feed layer owns that distinction.
func (c *Client) ListPosts(ctx context.Context, skip, limit int, search string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}
	var raw json.RawMessage
	if err := c.gw.Get(ctx, "/posts/", q, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var out models.Post
	if err := c.gw.Get(ctx, fmt.Sprintf("/posts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, title, content string) (*models.Post, error) {
	body := map[string]string{"title": title, "content": content}
	var out models.Post
	if err := c.gw.Post(ctx, "/posts/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost replaces a post's title and content.
func (c *Client) UpdatePost(ctx context.Context, id int, title, content string) (*models.Post, error) {
	body := map[string]string{"title": title, "content": content}
	var out models.Post
	if err := c.gw.Put(ctx, fmt.Sprintf("/posts/%d", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post. Authorization is enforced by the server.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/posts/%d", id))
}

// Like adds the viewer's like to a post.
func (c *Client) Like(ctx context.Context, postID int) error {
	return c.gw.Post(ctx, fmt.Sprintf("/posts/%d/like", postID), nil, nil)
}

// Unlike removes the viewer's like from a post.
func (c *Client) Unlike(ctx context.Context, postID int) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/posts/%d/like", postID))
}

// Favorite adds a post to the viewer's favorites.
func (c *Client) Favorite(ctx context.Context, postID int) error {
	return c.gw.Post(ctx, fmt.Sprintf("/posts/%d/favorite", postID), nil, nil)
}

// Unfavorite removes a post from the viewer's favorites.
func (c *Client) Unfavorite(ctx context.Context, postID int) error {
	return c.gw.Delete(ctx, fmt.Sprintf("/posts/%d/favorite", postID))
}

// ListComments fetches the comments of a post.
func (c *Client) ListComments(ctx context.Context, postID int) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.gw.Get(ctx, fmt.Sprintf("/posts/%d/comments", postID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment appends a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error) {
	body := map[string]string{"content": content}
	var out models.Comment
	if err := c.gw.Post(ctx, fmt.Sprintf("/posts/%d/comments", postID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
