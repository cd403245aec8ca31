package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medarena/medquiz/internal/config"
	"github.com/medarena/medquiz/internal/leaderboard"
	"github.com/medarena/medquiz/internal/srs"
)

// NewHTTPServer wires all routes (health, metrics, SRS, leaderboard, battle
// WebSocket) for the API service.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	srsHandler *srs.HTTPHandler,
	lbHandler *leaderboard.HTTPHandler,
	battleWSHandler http.HandlerFunc,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Spaced-repetition endpoints
	mux.HandleFunc("/v1/srs/due", srsHandler.HandleDue)
	mux.HandleFunc("/v1/srs/stats", srsHandler.HandleStats)
	mux.HandleFunc("/v1/srs/answer", srsHandler.HandleAnswer)
	mux.HandleFunc("/v1/srs/init-batch", srsHandler.HandleInitBatch)

	// Leaderboard endpoints
	mux.HandleFunc("/v1/leaderboards/xp", lbHandler.HandleTop)
	mux.HandleFunc("/v1/leaderboards/xp/me", lbHandler.HandleStanding)

	// WebSocket endpoint
	mux.HandleFunc("/ws/battles", battleWSHandler)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return redisClient.Ping(ctx).Err()
}
