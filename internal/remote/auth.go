package remote

import (
	"context"

	"github.com/starford/scrawl/internal/models"
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Login exchanges credentials for a token and the user summary.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.gw.Post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. It does not establish a session; the caller
// must log in separately.
func (c *Client) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	body := map[string]string{"email": email, "username": username, "password": password}
	var out models.User
	if err := c.gw.Post(ctx, "/auth/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
