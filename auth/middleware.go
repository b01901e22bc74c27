package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/user/blogivea-go/apperror"
)

const (
	msgNoToken      = "No token provided"
	msgInvalidToken = "Invalid or expired token"
)

// Middleware gates a route behind a valid bearer token.
//
// Per request: no Authorization header (or no token in it) is rejected with 401;
// a token that fails verification is rejected with 403; otherwise the decoded
// identity is attached to the request context and the next handler runs.
func Middleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) < 2 {
				WriteError(w, r, apperror.NewAuthError(msgNoToken, nil))
				return
			}
			if !strings.EqualFold(parts[0], "Bearer") || len(parts) != 2 {
				WriteError(w, r, apperror.NewUnauthorizedError(msgInvalidToken, nil))
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				evt := zerolog.Ctx(r.Context()).Debug().Err(err)
				if errors.Is(err, ErrTokenExpired) {
					evt.Msg("expired token rejected")
				} else {
					evt.Msg("invalid token rejected")
				}
				WriteError(w, r, apperror.NewUnauthorizedError(msgInvalidToken, err))
				return
			}

			ctx := NewContextWithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity fetches the identity set by Middleware. Handlers mounted behind
// Middleware always find one; a miss means the route was wired without it.
func RequireIdentity(r *http.Request) (Identity, error) {
	id, ok := IdentityFromContext(r.Context())
	if !ok || id.UserID == "" {
		return Identity{}, apperror.NewAuthError(msgNoToken, nil)
	}
	return id, nil
}
