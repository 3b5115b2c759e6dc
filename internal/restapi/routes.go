package restapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/julienschmidt/httprouter"
)

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/api/options.json", api.optionsHandler)
	router.HandlerFunc(http.MethodGet, "/api/prices.json", api.pricesHandler)
	router.HandlerFunc(http.MethodGet, "/api/prices.csv", api.pricesCSVHandler)
	router.HandlerFunc(http.MethodGet, "/api/chart.svg", api.chartHandler)
	router.HandlerFunc(http.MethodGet, "/api/series/:metric", api.seriesHandler)
	router.HandlerFunc(http.MethodGet, "/api/visits.json", api.visitsHandler)
	router.HandlerFunc(http.MethodPost, "/api/refresh.json", api.refreshHandler)
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)

	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.sendMethodNotAllowed)
}

// WithMiddleware wraps handler in the service middleware chain, outermost
// first: panic recovery, client IP and request ID, request logging, security
// headers, CORS, rate limiting, then compression.
func (api *RestAPI) WithMiddleware(handler http.Handler) http.Handler {
	handler = CompressionMiddleware(handler)
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = NewCORSMiddleware(api.Config.HTTP.CORSOrigins)(handler)
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.RealIP(handler)
	return middleware.Recoverer(handler)
}
