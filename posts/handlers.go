package posts

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/blogivea-go/auth"
)

// PostHandlers provides HTTP handlers for posts.
type PostHandlers struct {
	service *PostService
}

// NewPostHandlers creates new PostHandlers.
func NewPostHandlers(service *PostService) *PostHandlers {
	return &PostHandlers{service: service}
}

// RegisterRoutes mounts the post routes. Only like and unlike require a token;
// creation and deletion stay open as in the existing public API.
func (h *PostHandlers) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.HandleList())
	r.Post("/", h.HandleCreate())
	r.Put("/update", h.HandleUpdate())
	r.Get("/mypost/{username}", h.HandleListByAuthor())
	r.Delete("/delete/{username}", h.HandleDeleteByAuthor())
	r.Get("/{id}", h.HandleGet())
	r.Delete("/{id}", h.HandleDelete())

	r.With(requireAuth).Post("/like/{id}", h.HandleLike())
	r.With(requireAuth).Post("/unlike/{id}", h.HandleUnlike())
}

// HandleList godoc
// @Summary List posts
// @Tags posts
// @Produce json
// @Success 200 {array} Post
// @Router /posts [get]
func (h *PostHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleCreate godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body CreatePostRequest true "Post fields"
// @Success 201 {object} InsertedResponse
// @Router /posts [post]
func (h *PostHandlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePostRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		id, err := h.service.Create(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, InsertedResponse{InsertedID: id})
	}
}

// HandleGet godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, p)
	}
}

// HandleListByAuthor godoc
// @Summary List an author's posts
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {array} Post
// @Failure 404 {object} apperror.ErrorResponse "No posts for this author"
// @Router /posts/mypost/{username} [get]
func (h *PostHandlers) HandleListByAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.ListByAuthor(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleUpdate godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param post body UpdatePostRequest true "Id and fields to replace"
// @Success 200 {object} UpdateResult
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/update [put]
func (h *PostHandlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdatePostRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		res, err := h.service.Update(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, res)
	}
}

// HandleDelete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Param id path string true "Post id"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted"})
	}
}

// HandleDeleteByAuthor godoc
// @Summary Delete all posts of an author
// @Tags posts
// @Produce json
// @Param username path string true "Author username"
// @Success 200 {object} DeleteResult
// @Router /posts/delete/{username} [delete]
func (h *PostHandlers) HandleDeleteByAuthor() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.service.DeleteByAuthor(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, res)
	}
}

// HandleLike godoc
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post id"
// @Success 200 {object} Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Already liked"
// @Router /posts/like/{id} [post]
func (h *PostHandlers) HandleLike() http.HandlerFunc {
	return h.likeHandler(h.service.Like)
}

// HandleUnlike godoc
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post id"
// @Success 200 {object} Post
// @Failure 400 {object} apperror.ErrorResponse
// @Router /posts/unlike/{id} [post]
func (h *PostHandlers) HandleUnlike() http.HandlerFunc {
	return h.likeHandler(h.service.Unlike)
}

type likeFunc func(ctx context.Context, postID string, who auth.Identity) (*Post, error)

func (h *PostHandlers) likeHandler(op likeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := auth.RequireIdentity(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		p, err := op(r.Context(), chi.URLParam(r, "id"), who)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, p)
	}
}
