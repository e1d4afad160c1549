// Package server wires the application together: database, services,
// handlers, routes and the HTTP lifecycle. It is the composition root;
// every dependency is assembled here and nowhere else.
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

	"github.com/sakif/task-tracker/internal/auth"
	"github.com/sakif/task-tracker/internal/handler"
	"github.com/sakif/task-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/task-tracker/internal/repository/sqlite"
	"github.com/sakif/task-tracker/internal/service"
)

// Config holds everything the server needs from the environment.
//
// AdminPasswordHash and SessionSecret enable the admin login when both
// are set; with either missing the /admin surface is open and the
// login routes are not registered.
type Config struct {
	Port              int
	TemplateDir       string
	DBPath            string
	AdminPasswordHash string
	SessionSecret     string
}

// Server owns the router and the database connection. The connection
// is opened in New and closed during graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the dependency chain: the DB
// implements both repository interfaces, services receive those
// interfaces, handlers receive services.
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

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	userService := service.NewUserService(s.db, s.logger)
	taskService := service.NewTaskService(s.db, s.db, s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	taskHandler := handler.NewTaskHandler(taskService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.HandleList)
			r.Post("/", userHandler.HandleCreate)
			r.Get("/{id}", userHandler.HandleGet)
			r.Put("/{id}", userHandler.HandleUpdate)
			r.Delete("/{id}", userHandler.HandleDelete)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.HandleList)
			r.Post("/", taskHandler.HandleCreate)
			// The literal "user" segment must be routed before "{id}".
			r.Get("/user/{userID}", taskHandler.HandleListByUser)
			r.Get("/{id}", taskHandler.HandleGet)
			r.Put("/{id}", taskHandler.HandleUpdate)
			r.Put("/{id}/status", taskHandler.HandleUpdateStatus)
			r.Delete("/{id}", taskHandler.HandleDelete)
		})
	})

	sessions, passwords, err := s.adminAuth()
	if err != nil {
		return err
	}

	adminHandler, err := handler.NewAdminHandler(
		userService, taskService,
		s.config.TemplateDir,
		sessions, passwords, s.config.AdminPasswordHash,
		s.logger,
	)
	if err != nil {
		return fmt.Errorf("creating admin handler: %w", err)
	}

	s.router.Route("/admin", func(r chi.Router) {
		if adminHandler.LoginEnabled() {
			// Login routes stay outside the guard.
			r.Get("/login", adminHandler.HandleLoginForm)
			r.Post("/login", adminHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin(sessions))
				s.adminRoutes(r, adminHandler)
			})
			return
		}
		s.adminRoutes(r, adminHandler)
	})

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
	})

	return nil
}

// adminAuth builds the session and password services when the login is
// configured. A session secret that is set but too short is a startup
// error, not a silently open admin.
func (s *Server) adminAuth() (*auth.SessionService, *auth.PasswordService, error) {
	if s.config.AdminPasswordHash == "" || s.config.SessionSecret == "" {
		s.logger.Warn("admin login disabled; set ADMIN_PASSWORD_HASH and SESSION_SECRET to enable it")
		return nil, nil, nil
	}

	sessions, err := auth.NewSessionService(s.config.SessionSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session service: %w", err)
	}
	return sessions, auth.NewPasswordService(), nil
}

func (s *Server) adminRoutes(r chi.Router, h *handler.AdminHandler) {
	r.Get("/users", h.HandleUsersIndex)
	r.Get("/users/new", h.HandleUserNew)
	r.Post("/users/new", h.HandleUserCreate)
	r.Get("/users/{id}/edit", h.HandleUserEdit)
	r.Post("/users/{id}/edit", h.HandleUserUpdate)
	r.Post("/users/{id}/delete", h.HandleUserDelete)

	r.Get("/tasks", h.HandleTasksIndex)
	r.Get("/tasks/new", h.HandleTaskNew)
	r.Post("/tasks/new", h.HandleTaskCreate)
	r.Get("/tasks/{id}/edit", h.HandleTaskEdit)
	r.Post("/tasks/{id}/edit", h.HandleTaskUpdate)
	r.Post("/tasks/{id}/delete", h.HandleTaskDelete)

	if h.LoginEnabled() {
		r.Post("/logout", h.HandleLogout)
	}
}

// Start runs the HTTP server until SIGINT or SIGTERM, then drains
// in-flight requests and closes the database. Closing the DB last
// flushes the WAL and releases the file lock.
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
