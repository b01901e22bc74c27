package comments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/auth"
)

// CommentService holds the rules of the comment store.
type CommentService struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewCommentService creates a new CommentService.
func NewCommentService(repo Repository, log zerolog.Logger) *CommentService {
	return &CommentService{repo: repo, log: log, now: time.Now}
}

func (s *CommentService) storeError(op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("comment store failure")
	return apperror.NewDatabaseError("Failed to "+op, err)
}

// Create stores a comment authored by who. The referenced post is checked for
// syntax only; its existence is not verified.
func (s *CommentService) Create(ctx context.Context, req CreateCommentRequest, who auth.Identity) (string, error) {
	postID, err := uuid.Parse(req.PostID)
	if req.PostID == "" || err != nil {
		return "", apperror.NewBadRequestError("Invalid or missing postId", err)
	}

	createdAt := s.now().UTC()
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = *req.CreatedAt
	}
	c := &Comment{
		ID:        uuid.NewString(),
		PostID:    postID.String(),
		Name:      who.Name,
		Username:  who.Username,
		Content:   req.Content,
		CreatedAt: createdAt,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", s.storeError("create comment", err)
	}
	return c.ID, nil
}

// ListByPost returns the post's comments newest first. No comments is NotFound.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, apperror.NewBadRequestError("Invalid postId format", err)
	}
	list, err := s.repo.ListByPost(ctx, id.String())
	if err != nil {
		return nil, s.storeError("fetch comments", err)
	}
	if len(list) == 0 {
		return nil, apperror.NewNotFoundError("No comments found for this post", nil)
	}
	return list, nil
}

// ListAll returns every comment, unfiltered.
func (s *CommentService) ListAll(ctx context.Context) ([]Comment, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.storeError("fetch comments", err)
	}
	return list, nil
}
