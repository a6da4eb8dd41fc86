// Package server is the HTTP status surface of the bot: health, statistics
// and prometheus metrics.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"overbot/internal/config"
	"overbot/internal/database"
	"overbot/internal/middleware"
	"overbot/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// StatsProvider is implemented by *service.TelemetryService.
type StatsProvider interface {
	Statistics(ctx context.Context) (*service.Statistics, error)
	Uptime() time.Duration
}

// HealthCheck reports whether a dependency of the bot is reachable.
type HealthCheck func(ctx context.Context) error

type statusHandler struct {
	stats  StatsProvider
	check  HealthCheck
	logger zerolog.Logger
}

func NewRouter(stats StatsProvider, check HealthCheck, logger zerolog.Logger) http.Handler {
	h := &statusHandler{stats: stats, check: check, logger: logger}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID(logger))
	r.Use(c.Handler)

	r.Get("/healthz", h.health)
	r.Get("/stats", h.statistics)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// New builds the status server. It is started and stopped by the fx
// lifecycle.
func New(cfg *config.Config, telemetry *service.TelemetryService, db *sql.DB, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.StatusPort),
		ReadHeaderTimeout: 5 * time.Second,
		Handler: NewRouter(telemetry, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}, logger),
	}
}

// health reports 503 when the database does not answer.
func (h *statusHandler) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "uptime": h.stats.Uptime().String()}
	if err := h.check(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("database ping failed")
		body["status"] = "degraded"
		h.jsonResponse(w, http.StatusServiceUnavailable, body)
		return
	}
	h.jsonResponse(w, http.StatusOK, body)
}

func (h *statusHandler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Statistics(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to build statistics")
		h.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "statistics unavailable"})
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}

func (h *statusHandler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
