package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/challenge"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/config"
	"github.com/yvesHakizimana/umurava-skill-challenge-backend/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	service        *challenge.Service
	repo           storage.Repository
	validate       *validator.Validate
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	service *challenge.Service,
	repo storage.Repository,
) *Server {
	s := &Server{
		config:         cfg,
		service:        service,
		repo:           repo,
		validate:       validator.New(),
		authMiddleware: NewAuthMiddleware(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-Admin"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (identity required)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		// Challenges
		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", s.handleListChallenges)
			r.With(s.authMiddleware.RequireAdmin).Post("/", s.handleCreateChallenge)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetChallenge)
				r.With(s.authMiddleware.RequireAdmin).Patch("/", s.handleUpdateChallenge)
				r.With(s.authMiddleware.RequireAdmin).Delete("/", s.handleDeleteChallenge)
				r.Post("/join", s.handleJoinChallenge)
				r.Get("/participants", s.handleGetParticipants)
				r.Get("/participation", s.handleCheckParticipation)
			})
		})

		// Statistics
		r.With(s.authMiddleware.RequireAdmin).Get("/admin/stats", s.handleAdminStats)
		r.Get("/talent/stats", s.handleTalentStats)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
