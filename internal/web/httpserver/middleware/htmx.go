package middleware

import (
	"context"
	"net/http"
	"strings"
)

type htmxKey struct{}

// HTMX flags requests initiated by the htmx snippets (badge polling, cart
// fragment swaps) so handlers can answer with a fragment or an HX-Redirect
// instead of a full page.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("HX-Request"), "true") {
				r = r.WithContext(context.WithValue(r.Context(), htmxKey{}, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsHTMXRequest reports whether the request came from htmx.
func IsHTMXRequest(ctx context.Context) bool {
	flagged, _ := ctx.Value(htmxKey{}).(bool)
	return flagged
}

// RequireHTMX hides fragment routes from direct navigation: anything without
// the htmx marker gets a 404.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			w.Header().Add("Vary", "HX-Request")
			next.ServeHTTP(w, r)
		})
	}
}
