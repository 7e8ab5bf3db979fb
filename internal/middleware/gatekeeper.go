package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// Gatekeeper lässt nur Anfragen von vertrauenswürdigen IPs durch; die
// internen Wartungs-Endpunkte hängen hinter dieser Middleware.
func Gatekeeper(allowedIPs []string) func(next http.Handler) http.Handler {
	ipMap := make(map[string]struct{})
	for _, ip := range allowedIPs {
		ipMap[strings.TrimSpace(ip)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				remoteIP = r.RemoteAddr
			}

			if _, ok := ipMap[remoteIP]; !ok {
				slog.WarnContext(ctx, "Zugriff von nicht freigegebener IP blockiert",
					slog.String("remote_ip", remoteIP),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, `{"error": "forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
