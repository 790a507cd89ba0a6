package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/securebank/secure-bank-be/internal/auth"
	"github.com/securebank/secure-bank-be/internal/config"
	"github.com/securebank/secure-bank-be/internal/http/handlers"
	"github.com/securebank/secure-bank-be/internal/middleware"
	"github.com/securebank/secure-bank-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(time.Now())
	health.Register(mux)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	gate := func(next http.Handler) http.Handler {
		return middleware.Auth(tokens, logger, next)
	}

	authHandler := handlers.NewAuthHandler(store, tokens, &cfg, logger)
	authHandler.Register(mux)

	ledger := handlers.NewLedgerHandler(store, logger)
	ledger.Register(mux, gate)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
