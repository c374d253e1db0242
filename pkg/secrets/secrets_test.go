package secrets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "realmbridge/pkg/domain-errors"
)

func TestGenerateAPIKey(t *testing.T) {
	first, err := GenerateAPIKey()
	require.NoError(t, err)
	second, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	raw, err := base64.RawURLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, APIKeyBytes)
}

func TestGenerateRejectsNonPositiveSize(t *testing.T) {
	_, err := Generate(0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
