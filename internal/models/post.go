package models

import "time"

// Post is a single article as the server reports it to the current viewer.
// IsLiked and IsFavorited are viewer-relative and only meaningful when the
// request carried a session token; otherwise the server reports them false.
type Post struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Excerpt        string    `json:"excerpt,omitempty"`
	AuthorUsername string    `json:"author_username"`
	UserID         int       `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	LikesCount     int       `json:"likes_count"`
	CommentsCount  int       `json:"comments_count"`
	IsLiked        bool      `json:"is_liked"`
	IsFavorited    bool      `json:"is_favorited"`
}

// CanEdit reports whether u may edit or delete the post. The server enforces
// authorization on the actual request; this only gates the local action.
func (p Post) CanEdit(u *User) bool {
	return u != nil && (u.ID == p.UserID || u.IsAdmin)
}

// Comment belongs to exactly one post. Comments are append-only from the
// client's point of view.
type Comment struct {
	ID             int       `json:"id"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeedPage is one resolved page of the post collection.
type FeedPage struct {
	Items       []Post `json:"items"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
}
