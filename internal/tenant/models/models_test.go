package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

type TenantModelSuite struct {
	suite.Suite
	now time.Time
}

func TestTenantModelSuite(t *testing.T) {
	suite.Run(t, new(TenantModelSuite))
}

func (s *TenantModelSuite) SetupTest() {
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func (s *TenantModelSuite) TestNewTenant() {
	s.Run("seeds the display domain without subdomains", func() {
		t, err := NewTenant("acme", " Acme.COM ", s.now)
		s.Require().NoError(err)
		s.Equal("Acme.COM", t.DisplayName)
		s.Equal([]AllowedDomain{{Domain: "acme.com"}}, t.Domains)
		s.True(t.IsActive())
		s.Nil(t.DeactivatedAt)
	})

	s.Run("free text display name is seeded lower-cased", func() {
		t, err := NewTenant("acme", "Acme Co", s.now)
		s.Require().NoError(err)
		s.Equal("Acme Co", t.DisplayName)
		s.Equal([]AllowedDomain{{Domain: "acme co"}}, t.Domains)
	})

	s.Run("blank or oversized display name is a validation error", func() {
		_, err := NewTenant("acme", "   ", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewTenant("acme", strings.Repeat("a", 129), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("empty key is a validation error", func() {
		_, err := NewTenant(id.TenantKey(""), "acme.com", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *TenantModelSuite) TestDeactivateIsIdempotent() {
	t, err := NewTenant("acme", "acme.com", s.now)
	s.Require().NoError(err)

	later := s.now.Add(time.Hour)
	s.True(t.Deactivate(later))
	s.Equal(StatusDeactivated, t.Status)
	s.Require().NotNil(t.DeactivatedAt)
	s.Equal(later, *t.DeactivatedAt)

	s.False(t.Deactivate(later.Add(time.Hour)))
	s.Equal(later, *t.DeactivatedAt)
}

func (s *TenantModelSuite) TestAddDomain() {
	t, err := NewTenant("acme", "acme.com", s.now)
	s.Require().NoError(err)

	s.True(t.AddDomain("new.com", true, s.now))
	s.False(t.AddDomain("new.com", false, s.now), "duplicate is a no-op")
	s.False(t.AddDomain("acme.com", true, s.now))

	s.Equal([]AllowedDomain{
		{Domain: "acme.com"},
		{Domain: "new.com", AllowSubdomains: true},
	}, t.Domains)
}

func (s *TenantModelSuite) TestCloneDoesNotShareDomains() {
	t, err := NewTenant("acme", "acme.com", s.now)
	s.Require().NoError(err)
	t.Deactivate(s.now)

	c := t.Clone()
	c.AddDomain("other.com", false, s.now)
	*c.DeactivatedAt = s.now.Add(time.Hour)

	s.Len(t.Domains, 1)
	s.Equal(s.now, *t.DeactivatedAt)
}
