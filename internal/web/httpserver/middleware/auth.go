package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/auth"
)

// RequireAuth guards routes that need a signed-in customer. Requests with no
// token or an expired one get their session credentials wiped, a flash
// explaining why, and a redirect to the login page. The cart mirror lives in
// the same session, so the wipe also drops it, mirroring how an expired
// token clears everything at once.
func RequireAuth(loginPath string, log *zap.Logger) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				redirectToLogin(w, r, loginPath)
				return
			}

			token := sess.Token()
			if token == "" {
				sess.AddFlash("warning", "sign in to continue")
				redirectToLogin(w, r, loginPath)
				return
			}
			if auth.TokenExpired(token) {
				log.Info("expired token, clearing session credentials")
				sess.ClearCredentials()
				sess.AddFlash("warning", "your session expired, sign in again")
				redirectToLogin(w, r, loginPath)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards staff-only routes. It assumes RequireAuth already ran.
func RequireAdmin(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || sess.User() == nil {
				http.NotFound(w, r)
				return
			}
			role := sess.User().Role
			if role == "" {
				role = auth.RoleFromToken(sess.Token())
			}
			if !auth.IsAdminRole(role) {
				log.Warn("admin route denied", zap.String("role", role))
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", loginPath)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusFound)
}
