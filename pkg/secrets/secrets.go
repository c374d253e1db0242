package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "realmbridge/pkg/domain-errors"
)

// APIKeyBytes is the entropy of an API key before encoding.
const APIKeyBytes = 32

// Generate returns size random bytes, URL-safe base64 encoded without padding.
func Generate(size int) (string, error) {
	if size <= 0 {
		return "", dErrors.New(dErrors.CodeValidation, "secret size must be positive")
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateAPIKey returns a fresh opaque API key.
func GenerateAPIKey() (string, error) {
	return Generate(APIKeyBytes)
}
