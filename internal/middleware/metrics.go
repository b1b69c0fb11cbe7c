package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidshelf/internal/metrics"

	"github.com/gorilla/mux"
)

// unmatchedRoute labels requests that did not match any registered route.
const unmatchedRoute = "unmatched"

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are path prefixes that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig returns the default metrics configuration
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"},
	}
}

// Metrics returns a middleware that records Prometheus metrics. Install it
// with (*mux.Router).Use so the matched route template is available as the
// path label.
func Metrics(config MetricsConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			path := routeLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// routeLabel returns the route template for r, so /api/videos/{id} is one
// series no matter how many videos are requested.
func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return unmatchedRoute
	}
	tpl, err := route.GetPathTemplate()
	if err != nil || tpl == "" {
		return unmatchedRoute
	}
	return tpl
}
