// Package server assembles the HTTP surface of the gateway: router,
// middleware chain and route table.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Fatihur/api-baru/internal/apierrors"
	"github.com/Fatihur/api-baru/internal/config"
	"github.com/Fatihur/api-baru/internal/gateway"
	"github.com/Fatihur/api-baru/internal/handler"
	"github.com/Fatihur/api-baru/internal/health"
	"github.com/Fatihur/api-baru/internal/metrics"
	"github.com/Fatihur/api-baru/internal/middleware"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the HTTP server.
type Server struct {
	router       *mux.Router
	httpServer   *http.Server
	handlers     *handler.Handlers
	healthCheck  *health.HealthCheck
	errorHandler *apierrors.Handler
	metrics      *metrics.Metrics
	logger       *zap.Logger
	cfg          *config.Config
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, orch *gateway.Orchestrator, healthCheck *health.HealthCheck, m *metrics.Metrics, logger *zap.Logger) *Server {
	router := mux.NewRouter()
	errorHandler := apierrors.NewHandler(logger)
	handlers := handler.NewHandlers(orch, errorHandler, logger, cfg.Server.RequestTimeout)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		router:       router,
		httpServer:   httpServer,
		handlers:     handlers,
		healthCheck:  healthCheck,
		errorHandler: errorHandler,
		metrics:      m,
		logger:       logger,
		cfg:          cfg,
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	// Setup middleware chain
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
		middleware.Metrics(s.metrics),
		middleware.CORS(s.cfg.Server.AllowedOrigins),
	}

	// Add rate limiter if enabled
	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	// Apply middleware to router
	chain := middleware.Chain(middlewareChain...)
	s.router.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	// Health check endpoints
	s.router.HandleFunc("/health", s.healthCheck.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	// Admin routes: key management, guarded by the shared admin key.
	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.AdminAuth(s.cfg.Admin.Key, s.logger))
	admin.HandleFunc("/generate-key", s.handlers.GenerateAPIKey).Methods(http.MethodPost)
	admin.HandleFunc("/keys", s.handlers.ListAPIKeys).Methods(http.MethodGet)
	admin.HandleFunc("/revoke/{apiKey}", s.handlers.RevokeAPIKey).Methods(http.MethodPost)
	admin.HandleFunc("/keys/{apiKey}", s.handlers.DeleteAPIKey).Methods(http.MethodDelete)
	admin.HandleFunc("/logout/{apiKey}", s.handlers.AdminLogout).Methods(http.MethodPost)

	// Tenant API routes: every route below requires an API key.
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth)

	// Session lifecycle
	api.HandleFunc("/status", s.handlers.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/qr", s.handlers.GetPairingChallenge).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handlers.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{name}", s.handlers.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/incoming-messages", s.handlers.GetIncomingMessages).Methods(http.MethodGet)
	api.HandleFunc("/clear-messages", s.handlers.ClearMessages).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.handlers.GetIncomingMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.handlers.ClearMessages).Methods(http.MethodDelete)

	// Messaging
	api.HandleFunc("/send-message", s.handlers.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/send-image", s.handlers.SendImage).Methods(http.MethodPost)
	api.HandleFunc("/send-video", s.handlers.SendVideo).Methods(http.MethodPost)
	api.HandleFunc("/send-audio", s.handlers.SendAudio).Methods(http.MethodPost)
	api.HandleFunc("/send-document", s.handlers.SendDocument).Methods(http.MethodPost)
	api.HandleFunc("/send-sticker", s.handlers.SendSticker).Methods(http.MethodPost)
	api.HandleFunc("/send-location", s.handlers.SendLocation).Methods(http.MethodPost)
	api.HandleFunc("/send-contact", s.handlers.SendContact).Methods(http.MethodPost)
	api.HandleFunc("/send-buttons", s.handlers.SendButtons).Methods(http.MethodPost)
	api.HandleFunc("/send-list", s.handlers.SendList).Methods(http.MethodPost)
	api.HandleFunc("/send-poll", s.handlers.SendPoll).Methods(http.MethodPost)
	api.HandleFunc("/reply-message", s.handlers.ReplyMessage).Methods(http.MethodPost)
	api.HandleFunc("/forward-message", s.handlers.ForwardMessage).Methods(http.MethodPost)
	api.HandleFunc("/delete-message", s.handlers.DeleteMessage).Methods(http.MethodPost)
	api.HandleFunc("/react-message", s.handlers.ReactMessage).Methods(http.MethodPost)

	// Groups
	api.HandleFunc("/group/create", s.handlers.CreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/group/add-participants", s.handlers.AddParticipants).Methods(http.MethodPost)
	api.HandleFunc("/group/remove-participants", s.handlers.RemoveParticipants).Methods(http.MethodPost)
	api.HandleFunc("/group/promote-participants", s.handlers.PromoteParticipants).Methods(http.MethodPost)
	api.HandleFunc("/group/demote-participants", s.handlers.DemoteParticipants).Methods(http.MethodPost)
	api.HandleFunc("/group/info/{groupJid}", s.handlers.GetGroupInfo).Methods(http.MethodGet)
	api.HandleFunc("/group/update-subject", s.handlers.UpdateGroupSubject).Methods(http.MethodPost)
	api.HandleFunc("/group/update-description", s.handlers.UpdateGroupDescription).Methods(http.MethodPost)
	api.HandleFunc("/group/leave", s.handlers.LeaveGroup).Methods(http.MethodPost)
	api.HandleFunc("/group/invite-link/{groupJid}", s.handlers.GetGroupInviteLink).Methods(http.MethodGet)
	api.HandleFunc("/group/revoke-invite-link", s.handlers.RevokeGroupInviteLink).Methods(http.MethodPost)
	api.HandleFunc("/group/accept-invite", s.handlers.AcceptGroupInvite).Methods(http.MethodPost)

	// Contacts, presence and profile
	api.HandleFunc("/check-number/{number}", s.handlers.CheckNumber).Methods(http.MethodGet)
	api.HandleFunc("/profile-picture/{number}", s.handlers.GetProfilePicture).Methods(http.MethodGet)
	api.HandleFunc("/update-profile-picture", s.handlers.UpdateProfilePicture).Methods(http.MethodPost)
	api.HandleFunc("/update-profile-status", s.handlers.UpdateProfileStatus).Methods(http.MethodPost)
	api.HandleFunc("/business-profile/{number}", s.handlers.GetBusinessProfile).Methods(http.MethodGet)
	api.HandleFunc("/get-presence", s.handlers.GetPresence).Methods(http.MethodPost)
	api.HandleFunc("/set-presence", s.handlers.SetPresence).Methods(http.MethodPost)
	api.HandleFunc("/send-typing", s.handlers.SendTyping).Methods(http.MethodPost)
	api.HandleFunc("/send-recording", s.handlers.SendRecording).Methods(http.MethodPost)
	api.HandleFunc("/mark-as-read", s.handlers.MarkAsRead).Methods(http.MethodPost)
	api.HandleFunc("/block-user", s.handlers.BlockUser).Methods(http.MethodPost)
	api.HandleFunc("/unblock-user", s.handlers.UnblockUser).Methods(http.MethodPost)

	// Not found handler
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		s.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apierrors.ErrorCodeInvalidRequest, "endpoint not found", requestID)
	})

	// Method not allowed handler
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		s.errorHandler.WriteErrorResponse(w, http.StatusMethodNotAllowed, apierrors.ErrorCodeInvalidRequest, "method not allowed", requestID)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("host", s.cfg.Server.Host),
		zap.Int("port", s.cfg.Server.Port),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
