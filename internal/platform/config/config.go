// Package config reads the bridge configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	dErrors "realmbridge/pkg/domain-errors"
)

const (
	defaultAddr         = ":8080"
	defaultAuditTopic   = "realmbridge.audit"
	defaultAuditRetain  = 1000
	defaultSessionTTL   = 24 * time.Hour
	defaultMaxBodyBytes = 1 << 20
)

// Config is the full process configuration.
type Config struct {
	Environment string
	Server      Server
	Token       Token
	Storage     Storage
	Audit       Audit

	// SessionTTL is the lifetime of sessions opened by token logins.
	SessionTTL time.Duration
	// LenientLifecycle reports success for lifecycle calls that fail validation.
	LenientLifecycle bool
	// DemoSeed seeds a demo tenant with users at startup.
	DemoSeed bool
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr         string
	RootDomain   string
	MaxBodyBytes int64
}

// Token configures external token verification.
type Token struct {
	DefaultKey    string
	TenantKeys    map[string]string
	RequireExpiry bool
	Leeway        time.Duration
}

// Storage selects the backing stores. Empty URLs mean in-memory stores.
type Storage struct {
	DatabaseURL string
	RedisURL    string
}

// Audit configures the Kafka audit sink. No brokers means audit events are
// only logged and kept in memory. Either way the process keeps only the newest
// RetainEvents events in memory.
type Audit struct {
	KafkaBrokers []string
	Topic        string
	RetainEvents int
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds the configuration from getenv. Malformed values are config errors.
func Load(getenv func(string) string) (Config, error) {
	e := envReader{getenv: getenv}
	cfg := Config{
		Environment: e.str("BRIDGE_ENV", "development"),
		Server: Server{
			Addr:         e.str("BRIDGE_ADDR", defaultAddr),
			RootDomain:   strings.ToLower(e.str("BRIDGE_ROOT_DOMAIN", "")),
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		Token: Token{
			DefaultKey:    e.str("BRIDGE_SIGNING_KEY", ""),
			TenantKeys:    e.tenantKeys("BRIDGE_TENANT_KEYS"),
			RequireExpiry: e.boolean("BRIDGE_REQUIRE_TOKEN_EXPIRY", true),
			Leeway:        e.duration("BRIDGE_TOKEN_LEEWAY", 0),
		},
		Storage: Storage{
			DatabaseURL: e.str("DATABASE_URL", ""),
			RedisURL:    e.str("REDIS_URL", ""),
		},
		Audit: Audit{
			KafkaBrokers: e.list("KAFKA_BROKERS"),
			Topic:        e.str("AUDIT_TOPIC", defaultAuditTopic),
			RetainEvents: e.integer("AUDIT_RETAIN_EVENTS", defaultAuditRetain),
		},
		SessionTTL:       e.duration("SESSION_TTL", defaultSessionTTL),
		LenientLifecycle: e.boolean("BRIDGE_LENIENT_LIFECYCLE", false),
		DemoSeed:         e.boolean("BRIDGE_DEMO_SEED", false),
	}
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.Token.DefaultKey == "" && len(cfg.Token.TenantKeys) == 0 {
		return Config{}, dErrors.New(dErrors.CodeConfig, "BRIDGE_SIGNING_KEY or BRIDGE_TENANT_KEYS must be set")
	}
	if cfg.Audit.RetainEvents <= 0 {
		return Config{}, dErrors.New(dErrors.CodeConfig, "AUDIT_RETAIN_EVENTS must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, dErrors.New(dErrors.CodeConfig, "SESSION_TTL must be positive")
	}
	return cfg, nil
}

// envReader keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) fail(name, value string, cause error) {
	if e.err == nil {
		e.err = dErrors.Wrap(cause, dErrors.CodeConfig, fmt.Sprintf("invalid %s %q", name, value))
	}
}

func (e *envReader) str(name, def string) string {
	if v := strings.TrimSpace(e.getenv(name)); v != "" {
		return v
	}
	return def
}

func (e *envReader) boolean(name string, def bool) bool {
	v := strings.TrimSpace(e.getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, v, err)
		return def
	}
	return b
}

func (e *envReader) integer(name string, def int) int {
	v := strings.TrimSpace(e.getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return def
	}
	return n
}

func (e *envReader) duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return def
	}
	return d
}

func (e *envReader) list(name string) []string {
	var out []string
	for _, item := range strings.Split(e.getenv(name), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// tenantKeys parses "acme:secret,beta:other". Secrets may contain ':'.
func (e *envReader) tenantKeys(name string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range e.list(name) {
		tenant, secret, ok := strings.Cut(pair, ":")
		tenant = strings.TrimSpace(tenant)
		if !ok || tenant == "" || secret == "" {
			e.fail(name, pair, fmt.Errorf("expected tenant:secret"))
			continue
		}
		keys[strings.ToLower(tenant)] = secret
	}
	return keys
}
