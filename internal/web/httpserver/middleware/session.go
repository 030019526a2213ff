package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	appsession "motoshop.store/moto-web/internal/web/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "web.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
}

// Session attaches the decoded session to the request context and writes
// changes back to the client cookie. The Set-Cookie header has to leave with
// the response headers, and handlers write those themselves (rendered pages,
// redirects), so the cookie is committed lazily on the first byte written
// rather than after the handler returns.
func Session(store SessionStore, log *zap.Logger) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				log.Info("session expired, issuing a fresh one")
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					log.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			cw := &committingWriter{
				ResponseWriter: w,
				commit: func(hw http.ResponseWriter) {
					if err := store.Save(hw, sess); err != nil {
						log.Error("session save failed", zap.Error(err))
					}
				},
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			next.ServeHTTP(cw, r.WithContext(ctx))
			// Handlers that never write a byte still get their session saved.
			cw.commitOnce()
		})
	}
}

// committingWriter flushes the session cookie into the headers right before
// the response is committed. Once the status line is out, Set-Cookie is lost.
type committingWriter struct {
	http.ResponseWriter
	commit    func(http.ResponseWriter)
	committed bool
}

func (cw *committingWriter) commitOnce() {
	if cw.committed {
		return
	}
	cw.committed = true
	cw.commit(cw.ResponseWriter)
}

func (cw *committingWriter) WriteHeader(status int) {
	cw.commitOnce()
	cw.ResponseWriter.WriteHeader(status)
}

func (cw *committingWriter) Write(b []byte) (int, error) {
	cw.commitOnce()
	return cw.ResponseWriter.Write(b)
}

func (cw *committingWriter) Flush() {
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		cw.commitOnce()
		f.Flush()
	}
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
