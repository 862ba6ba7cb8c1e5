// Package server wires the router, middleware, and all route definitions.
//
// This is the composition root: main.go reads configuration, and New()
// assembles the whole dependency chain from it:
//
//	sqlite.DB → services → handlers → routes
//
// Handlers never touch the database and services never touch HTTP; each
// layer receives only the layer below it.
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

	"github.com/sparkbytes/server/internal/auth"
	"github.com/sparkbytes/server/internal/campus"
	"github.com/sparkbytes/server/internal/handler"
	"github.com/sparkbytes/server/internal/middleware"
	sqliteRepo "github.com/sparkbytes/server/internal/repository/sqlite"
	"github.com/sparkbytes/server/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	ZonesPath          string   // optional YAML override for campus zones
	AllowedOrigins     []string // CORS origins for the frontend
}

// Server owns the router and the resources that must be released on
// shutdown, chiefly the database connection.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the full dependency chain.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
//	GET  /healthz                  → liveness probe
//	GET  /auth/google/login        → start OAuth flow
//	GET  /auth/google/callback     → finish OAuth flow, set session cookie
//	POST /auth/logout              → clear session cookie
//	GET  /api/events               → browse events (filters via query params)
//	GET  /api/events/options       → distinct filter values
//	GET  /api/events/{id}          → one event with RSVP count
//	GET  /api/events/{id}/going    → RSVP count
//	GET  /api/notifications        → announcement feed
//	GET  /api/me                   → signed-in profile            (auth)
//	PUT  /api/me/preferences       → replace dietary preferences  (auth)
//	GET  /api/events/mine          → own events                   (auth)
//	POST /api/events               → post an event                (auth)
//	PUT  /api/events/{id}          → edit an event                (auth)
//	POST /api/events/{id}/rsvp     → RSVP to an event             (auth)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The frontend runs on its own origin, so the API needs CORS with
	// credentials enabled for the session cookie.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	zones, err := s.loadZones()
	if err != nil {
		return err
	}

	google := auth.NewGoogleProvider(
		s.config.GoogleClientID,
		s.config.GoogleClientSecret,
		s.config.GoogleCallbackURL,
	)

	authService := service.NewAuthService(s.db, tokens, s.logger)
	eventService := service.NewEventService(s.db, s.db, s.db, zones, s.logger)
	rsvpService := service.NewRSVPService(s.db, s.db, s.logger)
	notificationService := service.NewNotificationService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(google, authService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, rsvpService, s.logger)
	rsvpHandler := handler.NewRSVPHandler(rsvpService, s.logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Get("/auth/google/login", authHandler.HandleGoogleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		// Public reads.
		r.Get("/events", eventHandler.HandleList)
		r.Get("/events/options", eventHandler.HandleOptions)
		r.Get("/events/{id}", eventHandler.HandleGet)
		r.Get("/events/{id}/going", rsvpHandler.HandleGoingCount)
		r.Get("/notifications", notificationHandler.HandleList)

		// Everything below requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me/preferences", authHandler.HandlePreferences)
			r.Get("/events/mine", eventHandler.HandleListMine)
			r.Post("/events", eventHandler.HandleCreate)
			r.Put("/events/{id}", eventHandler.HandleUpdate)
			r.Post("/events/{id}/rsvp", rsvpHandler.HandleGoing)
		})
	})

	return nil
}

// loadZones reads the campus-zone boundaries from the configured YAML file,
// falling back to the built-in Boston University zones.
func (s *Server) loadZones() (*campus.Classifier, error) {
	if s.config.ZonesPath == "" {
		return campus.Default(), nil
	}
	zones, err := campus.Load(s.config.ZonesPath)
	if err != nil {
		return nil, fmt.Errorf("loading campus zones from %s: %w", s.config.ZonesPath, err)
	}
	s.logger.Info("campus zones loaded", slog.String("path", s.config.ZonesPath))
	return zones, nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
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
