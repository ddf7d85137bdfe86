// Package models defines the domain types exchanged with the blogging API.
package models

import "time"

// User is the account summary returned by the auth and profile endpoints.
type User struct {
	ID             int       `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio,omitempty"`
	IsAdmin        bool      `json:"is_admin,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	PostsCount     int       `json:"posts_count,omitempty"`
	FavoritesCount int       `json:"favorites_count,omitempty"`
}
