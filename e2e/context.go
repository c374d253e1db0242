package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"realmbridge/internal/app"
	"realmbridge/internal/platform/config"
	"realmbridge/internal/token"
	"realmbridge/pkg/platform/middleware/request"
)

const (
	platformHint = "platform"
	platformKey  = "platform-secret"
	rootDomain   = "bridge.test"
)

// tenantKeys are the per-tenant signing keys the bridge is started with.
// Tenants not listed fall back to platformKey.
var tenantKeys = map[string]string{
	"acme": "acme-secret",
	"beta": "beta-secret",
}

// TestContext holds state between test steps.
type TestContext struct {
	App              *app.App
	Server           *httptest.Server
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	Remembered       map[string]any
}

func NewTestContext() *TestContext {
	return &TestContext{HTTPClient: &http.Client{Timeout: 10 * time.Second}}
}

func (tc *TestContext) Reset() {
	tc.Close()
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.Remembered = make(map[string]any)
}

func (tc *TestContext) Close() {
	if tc.Server != nil {
		tc.Server.Close()
		tc.Server = nil
	}
	if tc.App != nil {
		tc.App.Close()
		tc.App = nil
	}
}

// Start builds an in-memory bridge and serves it on a local listener.
func (tc *TestContext) Start(lenient bool) error {
	var pairs []string
	for tenant, key := range tenantKeys {
		pairs = append(pairs, tenant+":"+key)
	}
	env := map[string]string{
		"BRIDGE_ENV":               "test",
		"BRIDGE_SIGNING_KEY":       platformKey,
		"BRIDGE_TENANT_KEYS":       strings.Join(pairs, ","),
		"BRIDGE_ROOT_DOMAIN":       rootDomain,
		"BRIDGE_LENIENT_LIFECYCLE": fmt.Sprint(lenient),
	}
	cfg, err := config.Load(func(k string) string { return env[k] })
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.Build(context.Background(), cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	tc.App = a
	tc.Server = httptest.NewServer(a.Handler)
	return nil
}

func signingKeyFor(hint string) string {
	if key, ok := tenantKeys[hint]; ok {
		return key
	}
	return platformKey
}

// Sign mints a token for user@realm with the key the bridge expects for signer.
func (tc *TestContext) Sign(signer, user, realm, role string) (string, error) {
	claims := token.Claims{User: user, Realm: realm}
	if role != "" {
		claims.Role = &role
	}
	now := time.Now()
	return token.Sign([]byte(signingKeyFor(signer)), claims, now, now.Add(5*time.Minute))
}

// PostForm submits form to path with the tenant hint header set.
func (tc *TestContext) PostForm(path, hint string, form url.Values) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.Server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if hint != "" {
		req.Header.Set(request.TenantHintHeader, hint)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
