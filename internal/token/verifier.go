package token

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"realmbridge/internal/token/metrics"
	dErrors "realmbridge/pkg/domain-errors"
	"realmbridge/pkg/platform/tracer"
	"realmbridge/pkg/requestcontext"
)

// Verifier checks HS256 tokens against tenant-scoped keys.
type Verifier struct {
	keys          KeyProvider
	requireExpiry bool
	leeway        time.Duration
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	logger        *slog.Logger
}

type Option func(*Verifier)

// WithRequireExpiry rejects tokens that carry no "exp" claim.
func WithRequireExpiry(required bool) Option {
	return func(v *Verifier) {
		v.requireExpiry = required
	}
}

// WithLeeway tolerates clock skew when checking "exp", "nbf" and "iat".
func WithLeeway(leeway time.Duration) Option {
	return func(v *Verifier) {
		v.leeway = leeway
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) {
		v.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(v *Verifier) {
		v.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

func NewVerifier(keys KeyProvider, opts ...Option) *Verifier {
	v := &Verifier{
		keys:          keys,
		requireExpiry: true,
		tracer:        tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signature of rawToken with the key of tenantHint and
// returns its claims.
//
// Every failure is a domain error: CodeConfig when no key exists for the
// tenant, CodeUnauthorized otherwise. The wrapped reason is one of the Err*
// sentinels of this package or a *MissingClaimError.
func (v *Verifier) Verify(ctx context.Context, tenantHint, rawToken string) (*Claims, error) {
	return v.verify(ctx, tenantHint, rawToken, func(ctx context.Context) ([]byte, error) {
		return v.keys.LookupKey(ctx, tenantHint)
	})
}

// VerifyPlatform checks rawToken against the platform key only, so a token
// signed with any tenant's own key fails with ErrInvalidSignature. tenantHint
// labels logs and spans and plays no part in key selection.
func (v *Verifier) VerifyPlatform(ctx context.Context, tenantHint, rawToken string) (*Claims, error) {
	return v.verify(ctx, tenantHint, rawToken, v.keys.PlatformKey)
}

func (v *Verifier) verify(ctx context.Context, tenantHint, rawToken string, lookup func(context.Context) ([]byte, error)) (claims *Claims, err error) {
	ctx, span := v.tracer.Start(ctx, tracer.SpanTokenVerify, tracer.String(tracer.AttrTenant, tenantHint))
	defer func() {
		if err != nil {
			span.SetAttributes(tracer.String(tracer.AttrReason, reasonLabel(err)))
			v.observeFailure(ctx, tenantHint, err)
		} else if v.metrics != nil {
			v.metrics.IncVerified()
		}
		span.End(err)
	}()

	key, err := lookup(ctx)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, dErrors.Wrap(ErrKeyNotFound, dErrors.CodeConfig, "no signing key configured for tenant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeConfig, "signing key lookup failed")
	}

	if rawToken == "" {
		return nil, authError(ErrMalformedToken)
	}

	parsed := new(wireClaims)
	_, err = jwt.ParseWithClaims(rawToken, parsed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidSignature
		}
		return key, nil
	}, v.parserOptions(ctx)...)
	if err != nil {
		return nil, authError(classify(err))
	}

	if parsed.User == "" {
		return nil, authError(&MissingClaimError{Claim: ClaimUser})
	}
	if parsed.Realm == "" {
		return nil, authError(&MissingClaimError{Claim: ClaimRealm})
	}

	return &Claims{User: parsed.User, Realm: parsed.Realm, Role: parsed.Role}, nil
}

func (v *Verifier) parserOptions(ctx context.Context) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	}
	if v.requireExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	return opts
}

// classify reduces library errors to the package's failure reasons so that
// nothing about the parser's internals reaches the caller.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, ErrInvalidSignature):
		return ErrInvalidSignature
	default:
		return ErrMalformedToken
	}
}

func authError(reason error) error {
	return dErrors.Wrap(reason, dErrors.CodeUnauthorized, reason.Error())
}

func reasonLabel(err error) string {
	var missing *MissingClaimError
	switch {
	case errors.As(err, &missing):
		return "missing_" + missing.Claim
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenNotYetValid):
		return "not_yet_valid"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	default:
		return "other"
	}
}

func (v *Verifier) observeFailure(ctx context.Context, tenantHint string, err error) {
	reason := reasonLabel(err)
	if v.metrics != nil {
		v.metrics.IncFailure(reason)
	}
	if v.logger != nil {
		v.logger.WarnContext(ctx, "token verification failed",
			"tenant_hint", tenantHint,
			"reason", reason,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
