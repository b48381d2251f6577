package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/icco/catalog/lib/catalog"
	"github.com/icco/catalog/lib/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route of the catalog server. rateLimit is the number
// of requests per minute a client may make to the cards and API routes; 0
// disables the limit.
func NewRouter(state *catalog.State, r *Renderer, rateLimit int) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/", HandleHome(state, r))
	router.Get("/health", health.Check(state))
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(g chi.Router) {
		if rateLimit > 0 {
			g.Use(rateLimiter(rateLimit, time.Minute))
		}
		g.Get("/cards", HandleCards(state, r))
		g.Get("/api/items", HandleItems(state))
		g.Get("/api/options", HandleOptions(state))
	})

	return router
}

func rateLimiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
}
