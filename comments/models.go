// Package comments stores comments attached to posts. Comments are created by
// an authenticated user and never edited afterwards.
package comments

import "time"

// Comment is a stored comment. Name and Username come from the author's token
// at creation time.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommentRequest is the body of POST /comments. Author fields are not
// accepted from the body.
type CreateCommentRequest struct {
	PostID    string     `json:"postId" example:"6b1f7a62-54c1-4f5e-9b59-0f4c0a7d3a11"`
	Content   string     `json:"content" example:"Nice post"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// InsertedResponse reports the id of a created comment.
type InsertedResponse struct {
	InsertedID string `json:"insertedId"`
}
