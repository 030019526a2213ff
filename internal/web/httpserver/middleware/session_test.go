package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appsession "motoshop.store/moto-web/internal/web/session"
)

func newTestManager(t *testing.T) *appsession.Manager {
	t.Helper()
	mgr, err := appsession.NewManager(appsession.Config{
		CookieName: "moto_session_test",
		HashKey:    []byte("test-hash-key-0123456789abcdef00"),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr
}

func noRedirects() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func sessionCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// A handler that redirects commits the response headers itself. The session
// cookie must already be in them, or the mutation made before the redirect is
// lost on the floor.
func TestSessionCookieSurvivesRedirect(t *testing.T) {
	store := newTestManager(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/go", func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Error("session missing from context")
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		sess.AddFlash("success", "saved")
		http.Redirect(w, r, "/next", http.StatusSeeOther)
	})
	mux.HandleFunc("/next", func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		flashes := sess.ConsumeFlashes()
		if len(flashes) != 1 || flashes[0].Message != "saved" {
			t.Errorf("flashes = %+v, want the one added before the redirect", flashes)
		}
		w.Write([]byte("ok"))
	})

	srv := httptest.NewServer(Session(store, nil)(mux))
	defer srv.Close()

	resp, err := noRedirects().Get(srv.URL + "/go")
	if err != nil {
		t.Fatalf("GET /go: %v", err)
	}
	resp.Body.Close()

	cookie := sessionCookie(resp, "moto_session_test")
	if cookie == nil {
		t.Fatal("redirect response carried no session cookie")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/next", nil)
	req.AddCookie(cookie)
	resp, err = noRedirects().Do(req)
	if err != nil {
		t.Fatalf("GET /next: %v", err)
	}
	resp.Body.Close()
}

func TestSessionCookieSurvivesRenderedBody(t *testing.T) {
	store := newTestManager(t)
	handler := Session(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if _, err := sess.EnsureCSRFToken(); err != nil {
			t.Errorf("EnsureCSRFToken: %v", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>home</body></html>"))
	}))

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if sessionCookie(resp, "moto_session_test") == nil {
		t.Fatal("rendered response carried no session cookie")
	}
}

func TestDestroyedSessionClearsCookie(t *testing.T) {
	store := newTestManager(t)
	handler := Session(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		sess.Destroy()
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}))

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := noRedirects().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	cookie := sessionCookie(resp, "moto_session_test")
	if cookie == nil {
		t.Fatal("destroy response carried no cookie at all")
	}
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("cookie not cleared: MaxAge=%d Value=%q", cookie.MaxAge, cookie.Value)
	}
}
