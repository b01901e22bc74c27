package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/auth"
)

const (
	msgUsernameTaken      = "Username already taken"
	msgEmailTaken         = "Email already taken"
	msgInvalidCredentials = "Invalid username or password"
	msgUserNotFound       = "User not found"
	msgPasswordTooLong    = "password must be at most 72 bytes"
)

// UserService holds the business rules of the user directory.
type UserService struct {
	repo   Repository
	hasher *auth.Hasher
	tokens *auth.TokenService
	log    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo Repository, hasher *auth.Hasher, tokens *auth.TokenService, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// hashPassword hashes plaintext, reporting an over-long password as a client error.
func (s *UserService) hashPassword(plaintext, failMsg string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperror.NewValidationError(msgPasswordTooLong, err)
	}
	if err != nil {
		return "", apperror.NewInternalError(failMsg, err)
	}
	return hash, nil
}

func identityOf(u *User) auth.Identity {
	return auth.Identity{UserID: u.ID, Username: u.Username, UserType: u.UserType, Name: u.Name}
}

// storeError maps repository sentinels to AppErrors; anything else is a database failure.
func (s *UserService) storeError(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NewNotFoundError(msgUserNotFound, err)
	case errors.Is(err, ErrDuplicateUsername):
		return apperror.NewDuplicateError(msgUsernameTaken, err)
	case errors.Is(err, ErrDuplicateEmail):
		return apperror.NewDuplicateError(msgEmailTaken, err)
	}
	s.log.Error().Err(err).Str("op", op).Msg("user store failure")
	return apperror.NewDatabaseError("Failed to "+op, err)
}

// checkAvailable rejects a username or email already held by a user other than
// excludeID. Username is checked first, so a request colliding on both reports
// the username.
func (s *UserService) checkAvailable(ctx context.Context, username, email *string, excludeID string) error {
	if username != nil {
		taken, err := s.repo.ExistsByUsername(ctx, *username, excludeID)
		if err != nil {
			return s.storeError("check username", err)
		}
		if taken {
			return apperror.NewDuplicateError(msgUsernameTaken, nil)
		}
	}
	if email != nil {
		taken, err := s.repo.ExistsByEmail(ctx, *email, excludeID)
		if err != nil {
			return s.storeError("check email", err)
		}
		if taken {
			return apperror.NewDuplicateError(msgEmailTaken, nil)
		}
	}
	return nil
}

// Register creates a user with userType "user" and returns its id and a session token.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" {
		return nil, apperror.NewValidationError("username is required", nil)
	}

	if err := s.checkAvailable(ctx, &username, &email, ""); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password, "Failed to insert user")
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		UserType:     DefaultUserType,
	}
	// The unique constraints catch registrations that raced past checkAvailable.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.storeError("insert user", err)
	}

	token, _, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, apperror.NewInternalError("Failed to insert user", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return &RegisterResponse{InsertedID: user.ID, Token: token}, nil
}

// Login verifies credentials and issues a fresh token. Unknown users and wrong
// passwords produce the same error.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.VerifyAbsent(req.Password)
			return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
		}
		return nil, s.storeError("log in", err)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.NewAuthError(msgInvalidCredentials, nil)
	}

	token, _, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return nil, apperror.NewInternalError("Login failed", err)
	}
	return &LoginResponse{Token: token}, nil
}

// List returns every user; any authenticated identity may call it.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storeError("fetch users", err)
	}
	return list, nil
}

// GetProfile returns the record of the calling identity.
func (s *UserService) GetProfile(ctx context.Context, id auth.Identity) (*User, error) {
	if _, err := uuid.Parse(id.UserID); err != nil {
		return nil, apperror.NewNotFoundError(msgUserNotFound, err)
	}
	user, err := s.repo.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, s.storeError("get user profile", err)
	}
	return user, nil
}

// UpdateProfile applies the supplied fields to the caller's own record. New
// usernames and emails must not belong to any other user; a new password is
// re-hashed before storage.
func (s *UserService) UpdateProfile(ctx context.Context, id auth.Identity, req UpdateProfileRequest) (*User, error) {
	if _, err := uuid.Parse(id.UserID); err != nil {
		return nil, apperror.NewNotFoundError(msgUserNotFound, err)
	}
	var changes Changes
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		changes.Name = &name
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperror.NewValidationError("username cannot be empty", nil)
		}
		changes.Username = &username
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, apperror.NewValidationError("email cannot be empty", nil)
		}
		changes.Email = &email
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, apperror.NewValidationError("password cannot be empty", nil)
		}
		hash, err := s.hashPassword(*req.Password, "Failed to update user profile")
		if err != nil {
			return nil, err
		}
		changes.PasswordHash = &hash
	}
	if changes.Empty() {
		return nil, apperror.NewBadRequestError("No fields provided for update", nil)
	}

	if err := s.checkAvailable(ctx, changes.Username, changes.Email, id.UserID); err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id.UserID, changes)
	if err != nil {
		return nil, s.storeError("update user profile", err)
	}
	return user, nil
}
