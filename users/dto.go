package users

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Name     string `json:"name,omitempty" example:"Ana Lima"`
	Username string `json:"username" validate:"required" example:"ana"`
	Email    string `json:"email" validate:"required,email" example:"a@x.com"`
	Password string `json:"password" validate:"required,max=72" example:"pw"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	InsertedID string `json:"insertedId"`
	Token      string `json:"token"`
}

// LoginRequest is the body of POST /users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"ana"`
	Password string `json:"password" validate:"required" example:"pw"`
}

// LoginResponse carries a freshly issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdateProfileRequest is the body of PUT /users/profile. Pointer fields allow
// partial updates: only the fields present in the body are changed.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1,max=72"`
}
