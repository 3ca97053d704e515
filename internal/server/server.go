package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/strefethen/sonos-remote-go/internal/api"
	"github.com/strefethen/sonos-remote-go/internal/apperrors"
	"github.com/strefethen/sonos-remote-go/internal/auth"
	"github.com/strefethen/sonos-remote-go/internal/config"
	"github.com/strefethen/sonos-remote-go/internal/poller"
	"github.com/strefethen/sonos-remote-go/internal/remote"
	"github.com/strefethen/sonos-remote-go/internal/status"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs all incoming HTTP requests
func requestLoggerMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			// The wrapper hides http.Hijacker, so websocket upgrades bypass it.
			if r.URL.Path == "/ws/status" {
				next.ServeHTTP(w, r)
				logger.Printf("%s %s upgraded %s request_id=%s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond), api.GetRequestID(r))
				return
			}
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			logger.Printf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, wrapped.status, time.Since(start).Round(time.Millisecond), api.GetRequestID(r))
		})
	}
}

// Options controls server wiring.
type Options struct {
	// DisablePoller skips the scheduled connectivity probe (for tests).
	DisablePoller bool
	Logger        *log.Logger
}

// NewHandler builds the HTTP handler around rc and returns a shutdown function.
func NewHandler(cfg config.Config, rc *remote.Remote, options Options) (http.Handler, func(context.Context) error, error) {
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	hub := status.NewHub(rc, logger)

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Use(api.RequestIDMiddleware)
	router.Use(requestLoggerMiddleware(logger))
	router.Use(api.RecovererMiddleware)
	router.Use(auth.Middleware(cfg))

	registerHealthRoutes(router)
	remote.RegisterRoutes(router, rc, hub)
	router.Handle("/ws/status", hub)
	router.NotFound(api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return apperrors.NewNotFoundError("No route for " + r.Method + " " + r.URL.Path)
	}).ServeHTTP)

	var probe *poller.Poller
	if !options.DisablePoller && cfg.PollSchedule != "" {
		var err error
		probe, err = poller.New(cfg.PollSchedule, rc, hub, cfg.SonosTimeout(), logger)
		if err != nil {
			return nil, nil, err
		}
		probe.Start()
	}

	shutdown := func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if probe != nil {
			probe.Stop(ctx)
		}
		hub.Close()
		return nil
	}

	return router, shutdown, nil
}

func registerHealthRoutes(router chi.Router) {
	router.Method(http.MethodGet, "/v1/health", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		response := map[string]any{
			"status":    "healthy",
			"service":   "sonos-remote",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		return api.WriteJSON(w, http.StatusOK, response)
	}))
}
