// Package server is the composition root: it builds every dependency,
// mounts the routes and runs the HTTP server.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New creates:
//	  memory.DB → opponent.Pool (+ demo match)
//	  memory.DB → MatchService / ReviewService / AuthService / ProfileService
//	  gemini.Client (if a key is set) → scout.Reporter → ProfileService
//	  metrics.Manager → services, scout.Reporter, HTTP middleware, /metrics
//	  services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/pitchperfect/internal/auth"
	"github.com/sakif/pitchperfect/internal/config"
	"github.com/sakif/pitchperfect/internal/handler"
	"github.com/sakif/pitchperfect/internal/metrics"
	"github.com/sakif/pitchperfect/internal/middleware"
	"github.com/sakif/pitchperfect/internal/opponent"
	"github.com/sakif/pitchperfect/internal/rating"
	"github.com/sakif/pitchperfect/internal/repository/memory"
	"github.com/sakif/pitchperfect/internal/scout"
	"github.com/sakif/pitchperfect/internal/scout/gemini"
	"github.com/sakif/pitchperfect/internal/service"
)

// shutdownTimeout is how long in-flight requests get to finish on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Manager
	db      *memory.DB
	pool    *opponent.Pool
}

// New builds every dependency from cfg and mounts the routes.
//
// The opponent pool is registered in the store before any request is served.
// With SeedDemo on, every new player gets a finished demo match against the
// first pool member.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db := memory.New()

	pool, err := opponent.Register(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("registering opponent pool: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		metrics: metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsEnabled)),
		db:      db,
		pool:    pool,
	}

	if err := s.setupRoutes(ctx); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// scoutGenerator returns the Gemini client when a key is configured. A nil
// Generator makes the reporter serve the stats fallback.
func (s *Server) scoutGenerator(ctx context.Context) (scout.Generator, error) {
	if s.config.ScoutAPIKey == "" {
		s.logger.Info("scout API key not set, serving fallback scout reports")
		return nil, nil
	}

	client, err := gemini.New(ctx, gemini.Config{
		APIKey:  s.config.ScoutAPIKey,
		BaseURL: s.config.ScoutBaseURL,
		Model:   s.config.ScoutModel,
		Timeout: s.config.ScoutTimeout,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("creating scout client: %w", err)
	}
	return client, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                     → liveness
// GET    /metrics                     → Prometheus exposition
// POST   /auth/code                   → open login challenge
// POST   /auth/verify                 → verify code
// POST   /auth/complete               → create player, issue session
// POST   /auth/logout                 → clear session cookie
// GET    /api/me                      → caller's profile        (auth)
// GET    /api/me/scout-report         → caller's scout report   (auth)
// GET    /api/opponents               → opponent pool           (auth)
// GET    /api/matches                 → board                   (auth)
// POST   /api/matches                 → schedule match          (auth)
// GET    /api/matches/{id}            → one match               (auth)
// PUT    /api/matches/{id}/status     → start / end match       (auth)
// POST   /api/matches/{id}/reviews    → submit ratings          (auth)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID must precede Logger so every log line carries the id.
// Recoverer sits inside Logger and Metrics so panics are recorded as 500s.
func (s *Server) setupRoutes(ctx context.Context) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var responder rating.Responder
	if s.config.SimulateReciprocal {
		responder = rating.NewRandomResponder(uint64(time.Now().UnixNano()))
	}

	gen, err := s.scoutGenerator(ctx)
	if err != nil {
		return err
	}

	authCfg := service.AuthConfig{
		DemoCode:     s.config.LoginDemoCode,
		ChallengeTTL: s.config.LoginChallengeTTL,
	}
	if s.config.SeedDemo {
		authCfg.Welcome = opponent.NewDemoSeeder(s.pool, s.db)
	}
	authService, err := service.NewAuthService(s.db, tokens, auth.NewCodeHasher(), authCfg, s.metrics, s.logger)
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}
	matchService := service.NewMatchService(s.db, s.metrics, s.logger)
	reviewService := service.NewReviewService(s.db, responder, s.metrics, s.logger)
	profileService := service.NewProfileService(s.db, scout.NewReporter(gen, s.metrics, s.logger), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.CookieSecure, s.logger)
	matchHandler := handler.NewMatchHandler(matchService, reviewService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.pool, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// === Onboarding (public) ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/code", authHandler.HandleRequestCode)
		r.Post("/verify", authHandler.HandleVerifyCode)
		r.Post("/complete", authHandler.HandleComplete)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API (session required) ===
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", profileHandler.HandleMe)
		r.Get("/me/scout-report", profileHandler.HandleScoutReport)
		r.Get("/opponents", profileHandler.HandleOpponents)

		r.Get("/matches", matchHandler.HandleList)
		r.Post("/matches", matchHandler.HandleCreate)
		r.Get("/matches/{id}", matchHandler.HandleGet)
		r.Put("/matches/{id}/status", matchHandler.HandleTransition)
		r.Post("/matches/{id}/reviews", matchHandler.HandleSubmitReview)
	})

	return nil
}

// Handler returns the root handler, for adapters such as AWS Lambda that
// serve requests without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until SIGINT/SIGTERM,
// then drains in-flight requests before returning.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting", slog.String("addr", s.config.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
