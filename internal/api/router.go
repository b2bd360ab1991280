package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"appscore-lab/internal/api/handlers"
	apimiddleware "appscore-lab/internal/api/middleware"
	"appscore-lab/internal/config"
	"appscore-lab/internal/metrics"
	"appscore-lab/pkg/logger"
)

const requestTimeout = 60 * time.Second

// Router holds dependencies for the API router
type Router struct {
	config    config.Config
	handlers  *handlers.Handlers
	rateStore apimiddleware.RateLimitStore
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewRouter creates a new Router instance. rateStore and m may be nil.
func NewRouter(cfg config.Config, h *handlers.Handlers, rateStore apimiddleware.RateLimitStore, m *metrics.Metrics, log *logger.Logger) *Router {
	return &Router{
		config:    cfg,
		handlers:  h,
		rateStore: rateStore,
		metrics:   m,
		logger:    log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger, r.metrics))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Use(middleware.Timeout(requestTimeout))
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)

		if r.config.Metrics.Enabled && r.metrics != nil {
			pub.Handle(r.config.Metrics.Path, r.metrics.Handler())
		}
	})

	// Long-lived event stream, exempt from the request timeout
	router.Get("/events", r.handlers.Events.Stream)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(requestTimeout))
		if r.config.RateLimit.Enabled && r.rateStore != nil {
			api.Use(apimiddleware.RateLimiter(r.rateStore, r.config.RateLimit, r.logger))
		}

		// Report endpoints
		api.Route("/reports", func(reports chi.Router) {
			reports.Post("/build", r.handlers.Reports.Build)
			reports.Get("/compare", r.handlers.Reports.CompareByHash)
			reports.Post("/compare", r.handlers.Reports.Compare)
			reports.Get("/history/{package}", r.handlers.Reports.History)
			reports.Get("/{hash}", r.handlers.Reports.Get)
			reports.Delete("/{hash}", r.handlers.Reports.Delete)
			reports.Delete("/{hash}/cache", r.handlers.Reports.Invalidate)
			reports.Put("/{hash}/payloads/{tool}", r.handlers.Reports.PutPayload)
		})

		// What-if scoring
		api.Route("/score", func(score chi.Router) {
			score.Post("/rich", r.handlers.Score.Rich)
			score.Post("/summary", r.handlers.Score.Summary)
		})

		// Permission rule table
		api.Route("/permissions", func(perms chi.Router) {
			perms.Get("/rules", r.handlers.Permissions.Rules)
			perms.Post("/classify", r.handlers.Permissions.Classify)
		})
	})

	return router
}
