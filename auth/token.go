package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers bad signatures, wrong algorithms, malformed tokens
	// and tokens that carry no user identity.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token has expired")
)

// Identity is the acting user for the remainder of a request.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	UserType string `json:"userType"`
	Name     string `json:"name,omitempty"`
}

// Claims is the JWT payload. UserID is duplicated into the standard subject claim.
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username"`
	UserType string `json:"userType"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the identity carried by the claims. The user id is taken from
// whichever of userId and sub is populated.
func (c *Claims) Identity() Identity {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return Identity{UserID: id, Username: c.Username, UserType: c.UserType, Name: c.Name}
}

// TokenService issues and verifies HS256 session tokens. There is no revocation:
// a token stays valid for its whole lifetime.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService builds a TokenService. The secret is loaded once at startup.
func NewTokenService(secret string, ttl time.Duration, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a token for id that expires exactly ttl after issuance.
func (s *TokenService) Issue(id Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		UserID:   id.UserID,
		Username: id.Username,
		UserType: id.UserType,
		Name:     id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Failures are always one of ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Identity().UserID == "" {
		return nil, fmt.Errorf("%w: user id claim is missing", ErrTokenInvalid)
	}
	return claims, nil
}
