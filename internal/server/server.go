// Package server wires the application together: database, services,
// handlers, middleware, and routes all meet here — the composition root.
// main.go stays minimal; everything below it receives its dependencies
// explicitly, which is what keeps the services testable against fake
// repositories.
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

	"github.com/sakif/user-directory/internal/handler"
	"github.com/sakif/user-directory/internal/middleware"
	sqliteRepo "github.com/sakif/user-directory/internal/repository/sqlite"
	"github.com/sakif/user-directory/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	DBPath      string
	Dev         bool     // expose internal error detail in 500 responses
	CORSOrigins []string // empty means allow all (the original runs bare cors())
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, assembles the dependency chain
// (DB → services → handlers), and registers all routes.
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
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures middleware and the route table:
//
//	GET    /health              → liveness probe
//	GET    /api/users           → list users (search + pagination envelope)
//	GET    /api/users/{id}      → fetch one user
//	POST   /api/users           → create user (optionally nested)
//	PUT    /api/users/{id}      → partial update (nested upsert-by-presence)
//	DELETE /api/users/{id}      → delete user, cascading relations
//	GET    /api/comments        → list comments (filters, bare array)
//	GET    /api/comments/{id}   → fetch one comment
//	POST   /api/comments        → create comment
//	PUT    /api/comments/{id}   → partial update
//	DELETE /api/comments/{id}   → delete comment
//
// Middleware order matters: RequestID must precede the logger so the id is in
// the context when the request is logged, and Recoverer runs inside both so a
// panicking handler still produces a logged 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.NotFound(handler.NotFoundHandler())

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok"}`))
	})

	userService := service.NewUserService(s.db, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger, s.config.Dev)

	commentService := service.NewCommentService(s.db.Comments(), s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger, s.config.Dev)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/users", userHandler.HandleList)
		r.Get("/users/{id}", userHandler.HandleGetByID)
		r.Post("/users", userHandler.HandleCreate)
		r.Put("/users/{id}", userHandler.HandleUpdate)
		r.Delete("/users/{id}", userHandler.HandleDelete)

		r.Get("/comments", commentHandler.HandleList)
		r.Get("/comments/{id}", commentHandler.HandleGetByID)
		r.Post("/comments", commentHandler.HandleCreate)
		r.Put("/comments/{id}", commentHandler.HandleUpdate)
		r.Delete("/comments/{id}", commentHandler.HandleDelete)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s cap),
// close the database.
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
			slog.Bool("dev", s.config.Dev),
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
