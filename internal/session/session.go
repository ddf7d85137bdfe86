// Package session owns the authenticated identity and its persistence.
// The Store is the single writer of the session record; every mutation
// re-serializes the whole record through the storage provider.
package session

import "github.com/starford/scrawl/internal/models"

// Session is the persisted authentication record.
type Session struct {
	User  *models.User `json:"user,omitempty"`
	Token string       `json:"token,omitempty"`
}

// IsAuthenticated reports whether both an identity and a token are held.
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}
