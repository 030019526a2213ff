package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/auth"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/catalog"
	"motoshop.store/moto-web/internal/web/checkout"
	"motoshop.store/moto-web/internal/web/httpserver"
	"motoshop.store/moto-web/internal/web/session"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthService wires a custom auth service implementation.
func WithAuthService(svc auth.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Auth = svc
	}
}

// WithCartService wires a custom cart service implementation.
func WithCartService(svc cart.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Cart = svc
	}
}

// WithCheckoutService wires a custom checkout service implementation.
func WithCheckoutService(svc checkout.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Checkout = svc
	}
}

// WithCatalogService wires a custom catalog service implementation.
func WithCatalogService(svc catalog.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = svc
	}
}

// WithSessionManager overrides the session manager.
func WithSessionManager(m *session.Manager) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Sessions = m
	}
}

// NewSessionManager builds a session manager with fixed test keys.
func NewSessionManager(t testing.TB) *session.Manager {
	t.Helper()

	m, err := session.NewManager(session.Config{
		CookieName: "moto_session_test",
		HashKey:    []byte("test-hash-key-0123456789abcdef00"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return m
}

// NewServer constructs an httptest server running the storefront HTTP stack
// on static services.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	staticCatalog, err := catalog.NewStaticCatalog()
	if err != nil {
		t.Fatalf("static catalog: %v", err)
	}

	cartSvc := cart.NewStaticService()
	checkoutSvc := checkout.NewStaticService()
	// Mirror the backend behaviour: a payment confirmed with clearCart
	// empties the cart server-side.
	checkoutSvc.ClearCart = func() { cartSvc.Items = nil }

	cfg := httpserver.Config{
		Address:  ":0",
		Sessions: NewSessionManager(t),
		Auth:     auth.NewStaticService(),
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Catalog:  staticCatalog,
		Logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	router, err := httpserver.Router(cfg)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}
