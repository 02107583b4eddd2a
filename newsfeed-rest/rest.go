// Package newsfeedrest provides the ops HTTP surface: health and pool
// statistics, with CORS support and common middleware.
package newsfeedrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	newsfeedcli "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-cli"
	newsfeedddb "github.com/SundaeSwap-finance/sundae-newsfeed/newsfeed-ddb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// PoolStats is the slice of the data layer the ops surface reads.
type PoolStats interface {
	PoolStats() newsfeedddb.Stats
}

func Middlewares(service newsfeedcli.Service, routes chi.Router) chi.Router {
	routes.Use(
		withCORS(),
		withLogger(newsfeedcli.Logger(service)),
		middleware.Recoverer,
	)
	return routes
}

// Routes builds the ops router: liveness plus store-pool sizing counters.
func Routes(service newsfeedcli.Service, stats PoolStats) chi.Router {
	routes := Middlewares(service, chi.NewRouter())

	routes.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": service.Name,
			"version": service.Version,
		})
	})

	routes.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"pool": stats.PoolStats(),
		})
	})

	return routes
}

// Webserver serves routes on port until ctx is cancelled.
func Webserver(ctx context.Context, service newsfeedcli.Service, port int, routes chi.Router) error {
	logger := newsfeedcli.Logger(service)
	logger.Info().Int("port", port).Msg("starting ops http server")

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", port),
		Handler: routes,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errs:
		return err
	}
}

func withCORS() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	})
}

func withLogger(logger zerolog.Logger) func(handler http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.WithContext(req.Context())
			req = req.WithContext(ctx)
			handler.ServeHTTP(w, req)
		})
	}
}
