package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/society-be/internal/accounts"
	"github.com/hongminglow/society-be/internal/auth"
	"github.com/hongminglow/society-be/internal/config"
	"github.com/hongminglow/society-be/internal/http/handlers"
	"github.com/hongminglow/society-be/internal/identity"
	"github.com/hongminglow/society-be/internal/middleware"
	"github.com/hongminglow/society-be/internal/resets"
	"github.com/hongminglow/society-be/internal/storage"
)

// Paths a must_change_password account may still reach. Everything else
// answers 403 until the password is changed.
var passwordChangeExempt = []string{
	"/health",
	"/register",
	"/login",
	"/me",
	"/change-password",
	"/request-password-reset",
}

// Options overrides defaults that tests and tooling need to control.
type Options struct {
	Hasher auth.PasswordHasher
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner    *http.Server
	accounts *accounts.Service
	limits   *middleware.RateLimitStore
	cfg      config.Config
	log      *zap.Logger
}

// New wires up services, middleware and routes, and returns a ready server.
func New(ctx context.Context, cfg config.Config, store storage.Store, log *zap.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	gate := auth.NewGate(tokens, store, store)
	provider := identity.NewProvider(store, store, opts.Hasher, tokens)

	accountSvc := accounts.NewService(store, provider, accounts.Config{
		EmailDomain:               cfg.EmailDomain,
		ResetForcesPasswordChange: cfg.ResetForcesPasswordChange,
	}, log.Named("accounts"))
	resetSvc := resets.NewService(store, store, log.Named("resets"))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), cfg.StorageDriver).Register(mux)
	handlers.NewAuthHandler(accountSvc, log).Register(mux)
	handlers.NewAdminAccountsHandler(accountSvc, log).Register(mux)
	handlers.NewResetsHandler(resetSvc, log).Register(mux)

	limits, err := middleware.NewRateLimitStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	resetLimit, err := middleware.RateLimit(limits, "reset", cfg.ResetRateLimit, log)
	if err != nil {
		_ = limits.Close()
		return nil, err
	}
	loginLimit, err := middleware.RateLimit(limits, "login", cfg.LoginRateLimit, log)
	if err != nil {
		_ = limits.Close()
		return nil, err
	}

	var handler http.Handler = middleware.ForcePasswordChange(passwordChangeExempt, mux)
	handler = middleware.Session(gate, log, handler)
	handler = middleware.OnPath("/login", loginLimit, handler)
	handler = middleware.OnPath("/request-password-reset", resetLimit, handler)
	handler = middleware.CORS(cfg.CORSOrigins, middleware.Logging(log.Named("http"), handler))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, accounts: accountSvc, limits: limits, cfg: cfg, log: log}, nil
}

// Handler exposes the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// BootstrapAdmin seeds the configured first administrator, if any.
func (s *Server) BootstrapAdmin(ctx context.Context) error {
	if s.cfg.Bootstrap.Email == "" {
		return nil
	}
	account, created, err := s.accounts.Bootstrap(ctx, accounts.BootstrapInput{
		Email:    s.cfg.Bootstrap.Email,
		Phone:    s.cfg.Bootstrap.Phone,
		Password: s.cfg.Bootstrap.Password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.log.Info("bootstrap admin ready", zap.String("account_id", account.ID), zap.Bool("must_change_password", account.MustChangePassword))
	}
	return nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.inner.Shutdown(ctx), s.limits.Close())
}
