package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eshoply/catalog-service/pkg/health"
	"github.com/eshoply/catalog-service/pkg/middleware"
)

const serviceName = "catalog-service"

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Products      *ProductHandler
	Reviews       *ReviewHandler
	Health        *health.Handler
	TokenValidate middleware.TokenValidator
	Logger        *slog.Logger
}

// NewRouter builds the HTTP route tree. Read endpoints are public; creating or
// updating products and submitting reviews require a bearer token.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(ContentTypeJSON)

	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	authRequired := middleware.Auth(deps.TokenValidate)

	r.Get("/products/", deps.Products.List)
	r.Get("/products/{id}/", deps.Products.Get)
	r.Get("/products/{id}/reviews/", deps.Reviews.List)

	r.Group(func(r chi.Router) {
		r.Use(authRequired)
		r.Post("/products/new/", deps.Products.Create)
		r.Put("/products/{id}/update/", deps.Products.Update)
		r.Post("/{id}/reviews/", deps.Reviews.Submit)
	})

	return r
}
