package metadata

import (
	"net/http"
	"strings"

	"primelab/pkg/requestcontext"
)

// ClientMetadata extracts the client IP address from the request and adds it
// to the context. Apply it early in the chain.
//
// X-Forwarded-For and X-Real-IP are set by whoever sends the request, so they
// are only honored when trustProxyHeaders is true. Otherwise a client could
// pick its own rate limit key.
func ClientMetadata(trustProxyHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := RemoteIP(r)
			if trustProxyHeaders {
				ip = ClientIPFromRequest(r)
			}
			ctx := requestcontext.WithClientIP(r.Context(), ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest extracts the real client IP, honoring proxy headers.
// Use it only behind a proxy that overwrites them.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For may list client, proxy1, proxy2; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	return RemoteIP(r)
}

// RemoteIP returns the address of the peer that opened the connection.
func RemoteIP(r *http.Request) string {
	// RemoteAddr is "ip:port" or "[::1]:port".
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
