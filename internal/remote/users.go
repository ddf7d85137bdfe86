package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/starford/scrawl/internal/models"
)

// Me fetches the current user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.gw.Get(ctx, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMe replaces the editable profile fields.
func (c *Client) UpdateMe(ctx context.Context, username, email, bio string) (*models.User, error) {
	body := map[string]string{"username": username, "email": email, "bio": bio}
	var out models.User
	if err := c.gw.Put(ctx, "/users/me", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserPosts fetches the posts authored by the given user.
func (c *Client) UserPosts(ctx context.Context, userID int) ([]models.Post, error) {
	var out []models.Post
	if err := c.gw.Get(ctx, fmt.Sprintf("/users/%d/posts", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyFavorites fetches the viewer's favorited posts.
func (c *Client) MyFavorites(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.gw.Get(ctx, "/users/me/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchUsers searches accounts by username or email.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	q := url.Values{}
	q.Set("search", query)
	var out []models.User
	if err := c.gw.Get(ctx, "/users/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
