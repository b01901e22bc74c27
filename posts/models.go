// Package posts stores blog posts: creation, lookup by id or author, partial
// updates, deletion, and the per-post set of usernames that liked it.
package posts

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrAlreadyLiked = errors.New("post already liked")
)

// Post is a stored post. Name and Username are copied from the author when the
// post is created and are not kept in sync with later profile edits.
type Post struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	// Likes holds each liking username at most once.
	Likes []string `json:"likes"`
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name        *string
	Username    *string
	Title       *string
	Description *string
	Content     *string
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Username == nil && c.Title == nil && c.Description == nil && c.Content == nil
}
