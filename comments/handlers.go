package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/blogivea-go/auth"
)

// CommentHandlers provides HTTP handlers for comments.
type CommentHandlers struct {
	service *CommentService
}

// NewCommentHandlers creates new CommentHandlers.
func NewCommentHandlers(service *CommentService) *CommentHandlers {
	return &CommentHandlers{service: service}
}

// RegisterRoutes mounts the comment routes. Only creation requires a token.
func (h *CommentHandlers) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.HandleListAll())
	r.Get("/postComments/{id}", h.HandleListByPost())
	r.With(requireAuth).Post("/", h.HandleCreate())
}

// HandleListAll godoc
// @Summary List all comments
// @Tags comments
// @Produce json
// @Success 200 {array} Comment
// @Router /comments [get]
func (h *CommentHandlers) HandleListAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListAll(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleCreate godoc
// @Summary Comment on a post
// @Description The author is the token holder; name and username in the body are ignored.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param comment body CreateCommentRequest true "Comment"
// @Success 201 {object} InsertedResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /comments [post]
func (h *CommentHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := auth.RequireIdentity(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		var req CreateCommentRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		id, err := h.service.Create(r.Context(), req, who)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, InsertedResponse{InsertedID: id})
	}
}

// HandleListByPost godoc
// @Summary List a post's comments
// @Tags comments
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {array} Comment
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /comments/postComments/{id} [get]
func (h *CommentHandlers) HandleListByPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListByPost(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}
