package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router
type Router struct {
	notificationHandler *NotificationHandler
	announceHandler     *AnnounceHandler
	wsHandler           *WebSocketHandler
	healthHandler       *HealthHandler
	jwtManager          *auth.JWTManager
	logger              *zap.Logger
}

// NewRouter creates a new router
func NewRouter(
	notificationHandler *NotificationHandler,
	announceHandler *AnnounceHandler,
	wsHandler *WebSocketHandler,
	healthHandler *HealthHandler,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *Router {
	return &Router{
		notificationHandler: notificationHandler,
		announceHandler:     announceHandler,
		wsHandler:           wsHandler,
		healthHandler:       healthHandler,
		jwtManager:          jwtManager,
		logger:              logger,
	}
}

// Setup configures and returns the chi router
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware())
	r.Use(chimiddleware.Compress(5))

	// Health and metrics endpoints (no auth required)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", rt.healthHandler.Health)
		r.Get("/ready", rt.healthHandler.Ready)
		r.Get("/live", rt.healthHandler.Live)
	})
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.jwtManager))

			// Realtime attachment
			r.Get("/ws", rt.wsHandler.Handle)

			// Notification inbox
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/unread-count", rt.notificationHandler.UnreadCount)
				r.Post("/{id}/read", rt.notificationHandler.MarkRead)
				r.Post("/read-all", rt.notificationHandler.MarkAllRead)

				// Broadcast-class delivery; role check is the producer
				// endpoint's responsibility
				r.With(middleware.RequireRole(auth.RoleAdmin)).
					Post("/broadcast", rt.announceHandler.Broadcast)
			})

			// Producer endpoints
			r.With(middleware.RequireRole(auth.RoleInstructor)).
				Post("/courses/{courseId}/announcements", rt.announceHandler.AnnounceCourse)
			r.With(middleware.RequireRole(auth.RoleInstructor)).
				Post("/groups/{groupId}/announcements", rt.announceHandler.AnnounceGroup)
			r.With(middleware.RequireRole(auth.RoleAdmin)).
				Post("/users/{userId}/notifications", rt.announceHandler.NotifyUser)
		})
	})

	return r
}
