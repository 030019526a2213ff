package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/auth"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/catalog"
	"motoshop.store/moto-web/internal/web/checkout"
	"motoshop.store/moto-web/internal/web/config"
	"motoshop.store/moto-web/internal/web/httpserver"
	"motoshop.store/moto-web/internal/web/observability"
	"motoshop.store/moto-web/internal/web/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		zap.NewExample().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("web server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      sessionHashKey(cfg, logger),
		BlockKey:     []byte(cfg.Session.BlockKey),
		CookieSecure: cfg.Session.CookieSecure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		return err
	}

	authSvc, cartSvc, checkoutSvc, catalogSvc, err := buildServices(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:  cfg.Server.Addr,
		Sessions: sessions,
		Auth:     authSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Catalog:  catalogSvc,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	srv.ReadTimeout = cfg.Server.ReadTimeout
	srv.WriteTimeout = cfg.Server.WriteTimeout
	srv.IdleTimeout = cfg.Server.IdleTimeout

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildServices wires the HTTP services when a backend is configured and the
// static stand-ins when it is not. The catalog always carries its static
// fallback so product browsing survives backend outages.
func buildServices(cfg *config.Config, logger *zap.Logger) (auth.Service, cart.Service, checkout.Service, catalog.Service, error) {
	staticCatalog, err := catalog.NewStaticCatalog()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if cfg.API.BaseURL == "" {
		logger.Warn("no API base URL configured, running on static services")
		cartSvc := cart.NewStaticService()
		checkoutSvc := checkout.NewStaticService()
		checkoutSvc.ClearCart = func() { cartSvc.Items = nil }
		return auth.NewStaticService(), cartSvc, checkoutSvc, staticCatalog, nil
	}

	client, err := apiclient.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout})
	if err != nil {
		return nil, nil, nil, nil, err
	}

	catalogSvc := catalog.NewFallback(catalog.NewHTTPService(client), staticCatalog, logger)
	return auth.NewHTTPService(client), cart.NewHTTPService(client), checkout.NewHTTPService(client), catalogSvc, nil
}

// sessionHashKey resolves the cookie signing key. Local runs without one get
// an ephemeral key, which invalidates sessions on restart.
func sessionHashKey(cfg *config.Config, logger *zap.Logger) []byte {
	if cfg.Session.HashKey != "" {
		return []byte(cfg.Session.HashKey)
	}
	logger.Warn("no session hash key configured, generating an ephemeral one")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		logger.Fatal("generate session key", zap.Error(err))
	}
	return key
}
