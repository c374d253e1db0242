package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "realmbridge/pkg/domain-errors"
)

type allowDomainForm struct {
	RealmID   string `form:"realm_id" validate:"required,notblank"`
	NewDomain string `form:"allow_domain_name" validate:"required,maildomain"`
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(&allowDomainForm{RealmID: "acme", NewDomain: "new.com"}))
	})

	t.Run("reports the wire field name", func(t *testing.T) {
		err := Validate(&allowDomainForm{NewDomain: "new.com"})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "realm_id is required", err.Error())
	})

	t.Run("domain rule", func(t *testing.T) {
		err := Validate(&allowDomainForm{RealmID: "acme", NewDomain: "not a domain"})
		assert.EqualError(t, err, "allow_domain_name must be a valid domain")
	})
}
