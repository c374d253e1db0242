package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sign mints an HS256 token for claims. A zero expiresAt omits "exp".
// It backs cmd/tokengen and the test suites; the bridge itself never issues tokens.
func Sign(key []byte, claims Claims, issuedAt, expiresAt time.Time) (string, error) {
	wc := wireClaims{
		User:  claims.User,
		Realm: claims.Realm,
		Role:  claims.Role,
	}
	if !issuedAt.IsZero() {
		wc.IssuedAt = jwt.NewNumericDate(issuedAt)
	}
	if !expiresAt.IsZero() {
		wc.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(key)
}
