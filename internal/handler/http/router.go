package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nimbusmart/catalog/internal/repository"
	"github.com/nimbusmart/catalog/internal/service"
	"github.com/nimbusmart/catalog/pkg/health"
	"github.com/nimbusmart/catalog/pkg/middleware"
)

// NewRouter creates a chi router with all catalog service routes registered.
func NewRouter(
	productService *service.ProductService,
	reviewService *service.ReviewService,
	categoryRepo repository.CategoryRepository,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))
	r.Use(middleware.Tracing("catalog"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Product API endpoints
	productHandler := NewProductHandler(productService, logger)
	reviewHandler := NewReviewHandler(reviewService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)

		// Static segments must precede the {id} routes. The curated lists
		// are read-mostly and safe to cache briefly at the edge.
		r.With(middleware.CacheControl(60)).Get("/allproducts", productHandler.AllProducts)
		r.With(middleware.CacheControl(60)).Get("/top", productHandler.TopProducts)
		r.With(middleware.CacheControl(60)).Get("/new", productHandler.NewProducts)
		r.Post("/filtered-products", productHandler.FilterProducts)

		r.Get("/{id}", productHandler.GetProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)

		r.Get("/{id}/reviews", reviewHandler.ListReviews)
		r.Post("/{id}/reviews", reviewHandler.CreateReview)
	})

	// Category API endpoints (read-only)
	categoryHandler := NewCategoryHandler(categoryRepo, logger)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", categoryHandler.ListCategories)
	})

	return r
}
