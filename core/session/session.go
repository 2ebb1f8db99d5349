package session

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/kymoh/darasa/core/catalog"
)

// Manager owns the bearer token and current-user identity for the lifetime of
// a session. Implementations live in storage/session.
//
// Invalidate is a global, cross-cutting effect: the HTTP client calls it on
// any 401/403 response, regardless of which operation triggered it.
type Manager interface {
	Token() string
	User() (catalog.User, bool)
	Authenticated() bool
	Set(token string, usr catalog.User) error
	Invalidate() error
}

// Claims represents the authorization claims transmitted via the bearer JWT.
type Claims struct {
	jwt.StandardClaims
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
}

// DecodeClaims parses the token claims without verifying the signature: the
// server is the authority, the client only needs the identity payload.
func DecodeClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "decoding token claims")
	}
	return claims, nil
}
