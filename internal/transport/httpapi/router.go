package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/thomasfevre/chill-split/internal/transport/httpapi/handler"
	"github.com/thomasfevre/chill-split/internal/transport/httpapi/middleware"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string
	GroupHandler   *handler.GroupHandler
	RelayerHandler *handler.RelayerHandler
	HealthHandler  *handler.HealthHandler
	JWTMiddleware  func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// API routes (all require a session token)
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTMiddleware == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.JWTMiddleware)

			// Group snapshot routes
			if cfg.GroupHandler != nil {
				r.Get("/groups", cfg.GroupHandler.ListGroups)
				r.Get("/groups/{address}", cfg.GroupHandler.GetGroup)
				r.Get("/groups/{address}/settlement", cfg.GroupHandler.GetSettlement)
				r.Post("/groups/{address}/refresh", cfg.GroupHandler.RefreshGroup)
			}

			// Relayer routes
			if cfg.RelayerHandler != nil {
				r.Post("/relay/sponsor", cfg.RelayerHandler.Sponsor)
				r.Get("/relay/sponsorships", cfg.RelayerHandler.ListSponsorships)
			}
		})
	})

	return r
}
