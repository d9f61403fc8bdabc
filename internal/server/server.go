// Package server wires the application together: database, services,
// handlers, middleware, routes, and the HTTP server lifecycle.
//
// This is the composition root — every dependency is constructed here (or
// in main) and injected downward. Handlers never build services, services
// never open databases.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/microblog/internal/auth"
	"github.com/sakif/microblog/internal/handler"
	"github.com/sakif/microblog/internal/middleware"
	sqliteRepo "github.com/sakif/microblog/internal/repository/sqlite"
	"github.com/sakif/microblog/internal/service"
)

// Token lifetimes. The access token is deliberately short — a stolen one
// goes stale in minutes; the refresh cookie does the long-haul work.
const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// Config holds everything the server needs, loaded from the environment
// in main. Secrets arrive here explicitly — nothing reads env vars or
// holds process-wide state below this point.
type Config struct {
	Port          int
	DBPath        string
	AccessSecret  string
	RefreshSecret string
	ClientOrigin  string // SPA origin allowed by CORS
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// media may be nil, in which case deleted posts skip Cloudinary cleanup.
func New(cfg Config, logger *slog.Logger, media service.MediaCleaner) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(media); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services and handlers,
// and mounts every route.
//
// ROUTE MAP:
//
//	GET    /api/health                → liveness probe
//	POST   /api/auth/register         → create account (sets refresh cookie)
//	POST   /api/auth/login            → log in (sets refresh cookie)
//	POST   /api/auth/refresh          → new access token from cookie
//	POST   /api/auth/logout           → clear refresh cookie
//	GET    /api/posts                 → feed page               [auth]
//	POST   /api/posts                 → create post             [auth]
//	GET    /api/posts/{id}            → single post             [optional auth]
//	DELETE /api/posts/{id}            → delete own post         [auth]
//	POST   /api/posts/{id}/like       → toggle like             [auth]
//	GET    /api/users/{id}            → profile                 [optional auth]
//	POST   /api/users/{id}/follow     → follow                  [auth]
//	DELETE /api/users/{id}/follow     → unfollow                [auth]
func (s *Server) setupRoutes(media service.MediaCleaner) error {
	accessTokens, err := auth.NewTokenService(s.config.AccessSecret, accessTokenTTL)
	if err != nil {
		return fmt.Errorf("creating access token service: %w", err)
	}
	refreshTokens, err := auth.NewTokenService(s.config.RefreshSecret, refreshTokenTTL)
	if err != nil {
		return fmt.Errorf("creating refresh token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db.Users, accessTokens, refreshTokens, passwords, s.logger)
	socialService := service.NewSocialService(s.db.Users, s.db.Follows, s.logger)
	feedService := service.NewFeedService(s.db.Posts, s.db.Likes, s.db.Follows, s.db.Users, media, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(feedService, s.logger)
	userHandler := handler.NewUserHandler(socialService, s.logger)

	requireAuth := auth.RequireAuth(accessTokens)
	optionalAuth := auth.OptionalAuth(accessTokens)

	// Global middleware, in order: request id → real ip → panic recovery →
	// request logging → CORS → per-IP rate limit.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // the refresh cookie crosses origins
		MaxAge:           300,
	}))
	s.router.Use(httprate.LimitByIP(100, time.Minute))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/refresh", authHandler.HandleRefresh)
			r.Post("/logout", authHandler.HandleLogout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(optionalAuth).Get("/{id}", postHandler.HandleGetPost)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", postHandler.HandleFeed)
				r.Post("/", postHandler.HandleCreate)
				r.Delete("/{id}", postHandler.HandleDelete)
				r.Post("/{id}/like", postHandler.HandleToggleLike)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(optionalAuth).Get("/{id}", userHandler.HandleProfile)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/{id}/follow", userHandler.HandleFollow)
				r.Delete("/{id}/follow", userHandler.HandleUnfollow)
			})
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests that drive the server
// with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database. Start closes it on shutdown; tests that
// never call Start use Close directly.
func (s *Server) Close() error {
	return s.db.Close()
}
