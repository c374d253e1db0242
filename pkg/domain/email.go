package domain

import (
	"regexp"
	"strings"

	dErrors "realmbridge/pkg/domain-errors"
)

const maxDomainLength = 128

var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*$`)

// NormalizeDomain lower-cases and validates an email domain such as "mail.example.com".
func NormalizeDomain(s string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(s))
	if d == "" {
		return "", dErrors.New(dErrors.CodeValidation, "domain cannot be empty")
	}
	if len(d) > maxDomainLength {
		return "", dErrors.New(dErrors.CodeValidation, "domain must be 128 characters or less")
	}
	if !domainPattern.MatchString(d) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid domain format")
	}
	return d, nil
}

// JoinEmail builds local@domain without re-parsing either half.
func JoinEmail(local, domain string) string {
	return local + "@" + domain
}

// SplitEmail splits an address at its last "@". ok is false when there is none.
func SplitEmail(email string) (local, domain string, ok bool) {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return "", "", false
	}
	return email[:i], email[i+1:], true
}

// EmailDomainIs reports whether the domain after the last "@" equals domain, ignoring case.
func EmailDomainIs(email, domain string) bool {
	_, d, ok := SplitEmail(email)
	return ok && strings.EqualFold(d, domain)
}

// ReplaceEmailDomain swaps only the trailing domain of email, leaving the local part untouched.
func ReplaceEmailDomain(email, newDomain string) (string, bool) {
	local, _, ok := SplitEmail(email)
	if !ok {
		return "", false
	}
	return JoinEmail(local, newDomain), true
}
