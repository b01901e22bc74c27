package posts

import "time"

// CreatePostRequest is the body of POST /posts. The author fields are taken as
// given; posts can be created without a token.
type CreatePostRequest struct {
	Name        string     `json:"name" example:"Ana Lima"`
	Username    string     `json:"username" example:"ana"`
	Title       string     `json:"title" example:"T"`
	Description string     `json:"description"`
	Content     string     `json:"content" example:"C"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// InsertedResponse reports the id of a created document.
type InsertedResponse struct {
	InsertedID string `json:"insertedId"`
}

// UpdatePostRequest is the body of PUT /posts/update.
type UpdatePostRequest struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Name        *string `json:"name,omitempty"`
	Username    *string `json:"username,omitempty"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// UpdateResult distinguishes a no-op update from a missing post: a missing
// post is a 404, an update that changed nothing is Matched && !Modified.
type UpdateResult struct {
	Matched  bool `json:"matched"`
	Modified bool `json:"modified"`
}

// DeleteResult reports how many posts a bulk delete removed.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
