package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	bridgehandler "realmbridge/internal/bridge/handler"
	"realmbridge/internal/platform/health"
	"realmbridge/pkg/platform/middleware/request"
)

// RouterConfig carries the transport settings the middleware chain needs.
type RouterConfig struct {
	RootDomain   string
	MaxBodyBytes int64
}

// NewRouter wires the bridge endpoints, probes and the metrics exposition
// behind the shared middleware chain. metrics may be nil.
func NewRouter(
	bridge *bridgehandler.Handler,
	probes *health.Handler,
	metrics http.Handler,
	latency *request.Metrics,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(latency, routePattern))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	r.Use(request.TenantHint(cfg.RootDomain))

	probes.Register(r)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	bridge.Register(r)

	return r
}

// routePattern labels latency by the matched chi pattern so path parameters
// do not explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
