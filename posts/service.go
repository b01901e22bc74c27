package posts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/auth"
)

const (
	msgInvalidID     = "Invalid post id"
	msgPostNotFound  = "Post not found"
	msgNoAuthorPosts = "No posts found for this user"
	msgAlreadyLiked  = "You already liked this post"
)

// PostService holds the rules of the post store.
type PostService struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(repo Repository, log zerolog.Logger) *PostService {
	return &PostService{repo: repo, log: log, now: time.Now}
}

// parseID rejects ids that are not syntactically valid before they reach the store.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", apperror.NewBadRequestError(msgInvalidID, err)
	}
	return parsed.String(), nil
}

func (s *PostService) storeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NewNotFoundError(msgPostNotFound, err)
	case errors.Is(err, ErrAlreadyLiked):
		return apperror.NewConflictError(msgAlreadyLiked, err)
	}
	s.log.Error().Err(err).Str("op", op).Msg("post store failure")
	return apperror.NewDatabaseError("Failed to "+op, err)
}

// Create stores a new post with an empty likes set and returns its id.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (string, error) {
	createdAt := s.now().UTC()
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = *req.CreatedAt
	}
	p := &Post{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Username:    req.Username,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		CreatedAt:   createdAt,
		Likes:       []string{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return "", s.storeError("create post", err)
	}
	return p.ID, nil
}

// List returns every post, oldest first.
func (s *PostService) List(ctx context.Context) ([]Post, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storeError("fetch posts", err)
	}
	return list, nil
}

// GetByID returns one post. A malformed id is a BadRequest, an unknown one NotFound.
func (s *PostService) GetByID(ctx context.Context, id string) (*Post, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError("fetch post", err)
	}
	return p, nil
}

// ListByAuthor returns the posts of username, or NotFound when there are none.
func (s *PostService) ListByAuthor(ctx context.Context, username string) ([]Post, error) {
	list, err := s.repo.ListByAuthor(ctx, username)
	if err != nil {
		return nil, s.storeError("fetch posts", err)
	}
	if len(list) == 0 {
		return nil, apperror.NewNotFoundError(msgNoAuthorPosts, nil)
	}
	return list, nil
}

// DeleteByID removes one post, or returns NotFound when nothing was deleted.
func (s *PostService) DeleteByID(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return s.storeError("delete post", err)
	}
	return nil
}

// DeleteByAuthor removes every post of username. Zero matches is still success.
func (s *PostService) DeleteByAuthor(ctx context.Context, username string) (*DeleteResult, error) {
	n, err := s.repo.DeleteByAuthor(ctx, username)
	if err != nil {
		return nil, s.storeError("delete posts", err)
	}
	return &DeleteResult{DeletedCount: n}, nil
}

// Update replaces the fields present in req. A missing post is NotFound; an
// update whose values equal the stored ones succeeds with Modified false.
func (s *PostService) Update(ctx context.Context, req UpdatePostRequest) (*UpdateResult, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	changes := Changes{
		Name:        req.Name,
		Username:    req.Username,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	}
	if changes.Empty() {
		return nil, apperror.NewBadRequestError("No fields provided for update", nil)
	}

	modified, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, s.storeError("update post", err)
	}
	return &UpdateResult{Matched: true, Modified: modified}, nil
}

// Like adds the caller's username to the post's likes. A second like by the
// same user is a Conflict.
func (s *PostService) Like(ctx context.Context, postID string, who auth.Identity) (*Post, error) {
	id, err := parseID(postID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.AddLike(ctx, id, who.Username)
	if err != nil {
		return nil, s.storeError("like post", err)
	}
	return p, nil
}

// Unlike removes the caller's username from the post's likes. It is idempotent.
func (s *PostService) Unlike(ctx context.Context, postID string, who auth.Identity) (*Post, error) {
	id, err := parseID(postID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.RemoveLike(ctx, id, who.Username)
	if err != nil {
		return nil, s.storeError("unlike post", err)
	}
	return p, nil
}
