package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/blogivea-go/auth"
)

// UserHandlers provides HTTP handlers for the user directory.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts the user routes. requireAuth guards listing and the
// profile endpoints; registration and login are public.
func (h *UserHandlers) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/", h.HandleRegister())
	r.Post("/login", h.HandleLogin())

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", h.HandleList())
		r.Get("/profile", h.HandleGetProfile())
		r.Put("/profile", h.HandleUpdateProfile())
	})
}

// HandleRegister godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing fields, or username/email already taken"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /users [post]
func (h *UserHandlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid username or password"
// @Router /users/login [post]
func (h *UserHandlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleList godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} User
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /users [get]
func (h *UserHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, list)
	}
}

// HandleGetProfile godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} User
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/profile [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.RequireIdentity(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		user, err := h.service.GetProfile(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}

// HandleUpdateProfile godoc
// @Summary Update the caller's profile
// @Description Only the fields present in the body are changed. A new password is re-hashed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} User
// @Failure 400 {object} apperror.ErrorResponse "No fields, or username/email already taken"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/profile [put]
func (h *UserHandlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.RequireIdentity(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateProfileRequest
		if err := auth.DecodeJSON(w, r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, user)
	}
}
