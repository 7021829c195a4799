// Package api provides the HTTP API server for the twin service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/twinlabs/twin/internal/availability"
	"github.com/twinlabs/twin/internal/calendar"
	"github.com/twinlabs/twin/internal/logging"
	"github.com/twinlabs/twin/internal/storage"
	"github.com/twinlabs/twin/internal/twin"
)

// Asker answers questions as the twin
type Asker interface {
	Ask(ctx context.Context, query string, history []twin.Turn) (*twin.Answer, error)
}

// StatusSource supplies the live availability status
type StatusSource interface {
	Status(ctx context.Context) (availability.Status, error)
}

// Authenticator reports calendar credential state
type Authenticator interface {
	IsAuthenticated() bool
}

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	asker  Asker
	status StatusSource
	auth   Authenticator
	oauth  *calendar.OAuthClient
	tokens *storage.TokenStore
}

// Config for the server
type Config struct {
	Port           int
	AllowedOrigins []string
	Asker          Asker
	Status         StatusSource
	Auth           Authenticator
	OAuth          *calendar.OAuthClient
	Tokens         *storage.TokenStore
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		asker:  cfg.Asker,
		status: cfg.Status,
		auth:   cfg.Auth,
		oauth:  cfg.OAuth,
		tokens: cfg.Tokens,
	}

	s.setupRouter(cfg.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // completion calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router returns the HTTP handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter(allowedOrigins []string) {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/chat", s.handleChat)
		r.Get("/status", s.handleStatus)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.handleAuthLogin)
		r.Get("/callback", s.handleAuthCallback)
		r.Get("/status", s.handleAuthStatus)
	})

	s.router = r
}

// Start starts the HTTP server (blocks)
func (s *Server) Start() error {
	logging.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Query   string      `json:"query"`
		History []twin.Turn `json:"history"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if input.Query == "" {
		s.respondError(w, http.StatusBadRequest, "Query required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), input.Query, input.History)
	if err != nil {
		// Completion outage: no meaningful answer can be produced
		logging.WithField("error", err).Error("chat request failed")
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.status.Status(r.Context())
	if err != nil {
		logging.WithField("error", err).Error("status request failed")
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}

	state := uuid.New().String()
	http.Redirect(w, r, s.oauth.AuthURL(state), http.StatusTemporaryRedirect)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil || s.tokens == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Google OAuth not configured")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errMsg := r.URL.Query().Get("error")
		if errMsg == "" {
			errMsg = "missing code"
		}
		s.respondError(w, http.StatusBadRequest, "Authorization failed: "+errMsg)
		return
	}

	token, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		logging.WithField("error", err).Error("OAuth code exchange failed")
		s.respondError(w, http.StatusBadGateway, "Failed to exchange authorization code")
		return
	}

	if err := s.tokens.Save(storage.ProviderGoogle, token); err != nil {
		logging.WithField("error", err).Error("failed to persist OAuth token")
		s.respondError(w, http.StatusInternalServerError, "Failed to store token")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"message":       "Google Calendar connected! You can close this window.",
		"authenticated": true,
	})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated := s.auth != nil && s.auth.IsAuthenticated()
	s.respondJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
