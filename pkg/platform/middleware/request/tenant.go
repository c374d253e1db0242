package request

import (
	"net"
	"net/http"
	"strings"

	id "realmbridge/pkg/domain"
	"realmbridge/pkg/requestcontext"
)

// TenantHintHeader lets a fronting proxy name the tenant explicitly.
const TenantHintHeader = "X-Tenant-Hint"

// TenantHint stores the tenant a request is routed to. The X-Tenant-Hint header
// wins; otherwise the left-most label of a Host directly under rootDomain is
// used ("acme.bridge.example" -> "acme"). Requests with neither carry no hint.
func TenantHint(rootDomain string) func(http.Handler) http.Handler {
	suffix := "." + strings.ToLower(strings.Trim(rootDomain, "."))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hint := strings.TrimSpace(r.Header.Get(TenantHintHeader))
			if hint == "" && suffix != "." {
				hint = hintFromHost(r.Host, suffix)
			}
			if hint != "" {
				ctx := requestcontext.WithTenantHint(r.Context(), id.TenantKey(strings.ToLower(hint)))
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hintFromHost(host, suffix string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	label, ok := strings.CutSuffix(host, suffix)
	if !ok || label == "" || strings.Contains(label, ".") {
		return ""
	}
	return label
}
