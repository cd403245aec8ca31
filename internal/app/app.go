package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medarena/medquiz/internal/battle"
	"github.com/medarena/medquiz/internal/config"
	"github.com/medarena/medquiz/internal/leaderboard"
	"github.com/medarena/medquiz/internal/logging"
	"github.com/medarena/medquiz/internal/question"
	"github.com/medarena/medquiz/internal/server"
	"github.com/medarena/medquiz/internal/srs"
	"github.com/medarena/medquiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	battleSvc *battle.Service
	bgCancels []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// Spaced repetition
	srsStore := srs.NewRedisStore(redisClient, logger)
	srsLogger := logging.Component(logger, "srs")
	srsSvc := srs.NewService(srsStore, srs.ServiceOptions{
		AvgAnswerMs:  cfg.SRS.AvgAnswerMs,
		SessionLimit: cfg.SRS.SessionLimit,
	}, srsLogger)
	srsHandler := srs.NewHTTPHandler(srsSvc, srsLogger)

	// Battle question bank
	questionRepo := question.NewRepository(pool)
	questionCache := question.NewCache(redisClient, 0)
	bank := question.NewBank(questionRepo, questionCache, nil, cfg.Battle.BankSize, logger)

	// Leaderboard
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
		TopN: cfg.Leaderboard.TopN,
	})
	lbHandler := leaderboard.NewHTTPHandler(leaderboardSvc, logger)

	// Real-time battles
	wsHub := ws.NewHub(logger)
	battleLogger := logging.Component(logger, "battle")
	battleSvc := battle.NewService(battle.Config{
		QuestionCount:      cfg.Battle.QuestionCount,
		PerQuestionSeconds: cfg.Battle.PerQuestionSeconds,
		CountdownSeconds:   cfg.Battle.CountdownSeconds,
		RevealDelay:        cfg.Battle.RevealDelay,
		AnswerGrace:        cfg.Battle.AnswerGrace,
		FinishedRoomGrace:  cfg.Battle.FinishedRoomGrace,
		TicketTTL:          cfg.Battle.TicketTTL,
	}, bank, wsHub, battle.ServiceOptions{XP: leaderboardSvc}, battleLogger)
	battleHandler := battle.NewHandler(battleSvc, wsHub, battleLogger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, srsHandler, lbHandler, battleHandler.HandleWebSocket)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		http:      apiServer,
		battleSvc: battleSvc,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go a.battleSvc.RunTicketJanitor(bgCtx)
}
