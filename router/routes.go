package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/subdee/icepay/handler"
	"github.com/subdee/icepay/infra/metrics"
	"github.com/subdee/icepay/infra/middle"
	"github.com/subdee/icepay/infra/response"
	v1 "github.com/subdee/icepay/router/v1"
)

// Options configures the cross-cutting middleware of the API
type Options struct {
	APIKey         string
	RateLimit      int // requests per RateWindow and client; 0 disables limiting
	RateWindow     time.Duration
	AllowedOrigins []string
}

// New builds the HTTP handler of the service. The rate limiter's cleanup loop stops when ctx is done.
func New(ctx context.Context, payment *handler.PaymentHandler, health *handler.HealthHandler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middle.RequestIDMiddleware())
	r.Use(middle.RequestLoggingMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(metrics.Middleware)
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middle.RequestIDHeader},
		ExposedHeaders: []string{middle.RequestIDHeader},
		MaxAge:         300,
	}))

	// Public endpoints
	r.Get("/health", health.CheckHealth)
	r.Get("/health/ready", health.CheckReadiness)
	r.Handle("/metrics", metrics.Handler())

	// Icepay authenticates postbacks by source address and checksum
	r.Post("/postback/icepay", payment.Postback)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middle.AuthMiddleware(opts.APIKey))
		if opts.RateLimit > 0 {
			window := opts.RateWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(middle.RateLimitMiddleware(middle.NewRateLimiter(ctx, opts.RateLimit, window)))
		}

		v1.Routes(r, payment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	})

	return r
}
