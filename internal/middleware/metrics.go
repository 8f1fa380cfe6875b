package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests no route pattern matched.
const unmatchedRoute = "unmatched"

// HTTPObserver receives one observation per served request.
type HTTPObserver interface {
	ObserveHTTPRequest(route, method string, status int, d time.Duration)
}

// Metrics returns an HTTP middleware that reports every request to obs,
// labelled with the chi route pattern rather than the raw path.
func Metrics(obs HTTPObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			obs.ObserveHTTPRequest(route, r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
