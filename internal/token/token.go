// Package token verifies signed assertions issued by the external directory.
//
// A token is a compact HS256 JWT carrying at least the "user" (local part of the
// subject address) and "realm" (its domain) claims. The signing key is chosen per
// tenant by a KeyProvider.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Failure reasons. Verifier wraps them in domain errors, so callers match with
// errors.Is and transports map by code.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrKeyNotFound      = errors.New("signing key not found")
)

// MissingClaimError reports a required claim that is absent or empty.
type MissingClaimError struct {
	Claim string
}

func (e *MissingClaimError) Error() string {
	return fmt.Sprintf("missing claim %q", e.Claim)
}

const (
	ClaimUser  = "user"
	ClaimRealm = "realm"
)

// Claims are the verified fields of an external token. They are built fresh
// per request and never persisted.
type Claims struct {
	User  string
	Realm string
	Role  *string
}

// Email is the address the claims assert, user@realm.
func (c Claims) Email() string {
	return c.User + "@" + c.Realm
}

// wireClaims is the JSON layout of the token payload.
type wireClaims struct {
	User  string  `json:"user,omitempty"`
	Realm string  `json:"realm,omitempty"`
	Role  *string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
