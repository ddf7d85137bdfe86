// Package remote is the typed client for the blogging API. Each method maps
// to one endpoint; all failures arrive normalized by the gateway.
package remote

import (
	"github.com/starford/scrawl/internal/gateway"
)

// Client wraps the gateway with one method per endpoint.
type Client struct {
	gw *gateway.Client
}

// New creates a Client on top of gw.
func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}
