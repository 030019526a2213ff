package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/auth"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/catalog"
	"motoshop.store/moto-web/internal/web/checkout"
	custommw "motoshop.store/moto-web/internal/web/httpserver/middleware"
	"motoshop.store/moto-web/internal/web/httpserver/ui"
	"motoshop.store/moto-web/internal/web/observability"
	"motoshop.store/moto-web/internal/web/session"
	"motoshop.store/moto-web/public"
)

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address  string
	Sessions *session.Manager
	Auth     auth.Service
	Cart     cart.Service
	Checkout checkout.Service
	Catalog  catalog.Service
	Logger   *zap.Logger
}

// New constructs the HTTP server with the middleware stack, embedded assets
// and all storefront routes mounted.
func New(cfg Config) (*http.Server, error) {
	router, err := Router(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// Router builds the chi router on its own, which tests mount directly.
func Router(cfg Config) (chi.Router, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("httpserver: session manager is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	render, err := ui.NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("httpserver: templates: %w", err)
	}
	handlers := ui.NewHandlers(cfg.Auth, cfg.Cart, cfg.Checkout, cfg.Catalog, render, log)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(log))
	router.Use(chimw.Recoverer)
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(30 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))

	router.Group(func(r chi.Router) {
		r.Use(custommw.Session(cfg.Sessions, log))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.CSRF())

		r.Get("/", handlers.Home)
		r.Get("/catalog", handlers.Catalog)
		r.Get("/products/{id}", handlers.Product)

		r.Get("/login", handlers.LoginPage)
		r.Post("/login", handlers.Login)
		r.Get("/register", handlers.RegisterPage)
		r.Post("/register", handlers.Register)
		r.Post("/logout", handlers.Logout)

		r.With(custommw.RequireHTMX()).Get("/cart/badge", handlers.CartBadge)

		r.Group(func(protected chi.Router) {
			protected.Use(custommw.RequireAuth("/login", log))

			protected.Get("/cart", handlers.CartPage)
			protected.Post("/cart/items", handlers.CartAdd)
			protected.Post("/cart/items/{productID}", handlers.CartUpdate)
			protected.Post("/cart/items/{productID}/remove", handlers.CartRemove)
			protected.Post("/cart/clear", handlers.CartClear)

			protected.Get("/checkout", handlers.CheckoutStart)
			protected.Get("/checkout/resume/{orderID}", handlers.CheckoutResume)
			protected.Post("/checkout/address", handlers.CheckoutAddress)
			protected.Get("/checkout/payment", handlers.CheckoutPayment)
			protected.Post("/checkout/payment", handlers.CheckoutPay)
			protected.Get("/checkout/confirmation", handlers.CheckoutConfirmation)
			protected.Post("/checkout/back", handlers.CheckoutBack)
			protected.Post("/checkout/cancel", handlers.CheckoutCancel)

			protected.Get("/profile", handlers.ProfilePage)
			protected.Post("/profile", handlers.ProfileUpdate)

			protected.With(custommw.RequireAdmin(log)).Get("/admin/inventory", handlers.InventoryPage)
		})
	})

	return router, nil
}
