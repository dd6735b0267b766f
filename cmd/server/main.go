package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/chancia/quizlive/internal/adapters/http"
	"github.com/chancia/quizlive/internal/app"
	"github.com/chancia/quizlive/internal/config"
	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var pg *store.PostgresStore
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error().Err(err).Msg("postgres pool setup failed, running without it")
		} else {
			defer pool.Close()
			pg = store.NewPostgresStore(pool)
		}
	}

	var scores core.ScoreBoard = core.NewMemoryScoreBoard()
	if cfg.ScoreBackend == "redis" && cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		scores = store.NewRedisScoreBoard(rdb, 2*time.Second)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis score backend")
	}

	gw := app.NewGateway(core.NewRoomRegistry(), scores, core.NewRoomLifecycle(), core.NewAnswerLog())
	gw.SingleAnswer = cfg.SingleAnswer
	gw.OracleTimeout = cfg.OracleTimeout
	if pg != nil {
		gw.Oracle = pg
		gw.Persist = app.NewPersister(pg, cfg.PersistQueue, cfg.PersistRetries, cfg.PersistBackoff, cfg.PersistTimeout)
		go gw.Persist.Run(ctx)
	}

	var oracle core.QuestionOracle
	if pg != nil {
		oracle = pg
	}
	r := router.SetupRouter(ctx, cfg, gw, oracle)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Quizlive server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
