// Package users is the user directory: registration, login, listing and
// profile management, with username and email kept globally unique.
package users

import (
	"errors"
	"time"
)

// DefaultUserType is assigned to every registered user.
const DefaultUserType = "user"

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

// User is a stored user record. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name         *string
	Username     *string
	Email        *string
	PasswordHash *string
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Username == nil && c.Email == nil && c.PasswordHash == nil
}
