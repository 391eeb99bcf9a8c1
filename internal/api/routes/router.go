package routes

import (
	"net/http"

	"github.com/clinicore/claimgen/internal/api/handlers"
	"github.com/clinicore/claimgen/internal/api/middleware"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	claimHandler  *handlers.ClaimHandler
	healthHandler *handlers.HealthHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	claimHandler *handlers.ClaimHandler,
	healthHandler *handlers.HealthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		claimHandler:    claimHandler,
		healthHandler:   healthHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Claim endpoints
	r.mux.HandleFunc("POST /api/claims/generate", r.claimHandler.GenerateClaim)
	r.mux.HandleFunc("GET /api/claims", r.claimHandler.ListClaims)
	r.mux.HandleFunc("GET /api/claims/{id}", r.claimHandler.GetClaim)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Compression, ETag, cache headers
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
