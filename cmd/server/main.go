package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/config"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/infra"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/router"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/service"
	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var version = "dev"

func main() {
	// Structured logger: console in development, JSON in production
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("service", cfg.ServiceName).Logger()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := infra.InitTelemetry(ctx, cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telemetry")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL empty: price cache and sheet delivery disabled")
	}

	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig("snapshot"))
	var queue service.SheetQueue
	if rdb != nil {
		queue = worker.NewDispatcher(rdb)
	}
	svcs := router.BuildServices(cfg, db, rdb, breaker, queue)

	// Sheet delivery runs in the background pool. Handlers are wired here so
	// the pool shares the same services as the HTTP layer.
	if rdb != nil {
		store, err := infra.NewSheetStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init sheet storage")
		}
		mailer := infra.NewMailer(cfg)
		if !mailer.Enabled() {
			log.Warn().Msg("SMTP_HOST empty: sheet jobs will be stored, then dead-lettered at the mail step")
		}
		pool := worker.NewPool(rdb, map[string]worker.JobHandler{
			worker.JobTypeProductionSheet: worker.NewProductionSheetWorker(svcs.Production, store, mailer, cfg.KitchenEmail),
		})
		pool.Start(ctx, cfg.WorkerPoolSize)
		worker.StartReplayCron(ctx, worker.ReplayCronConfig{RDB: rdb, Breaker: breaker, Queue: worker.QueueProductionSheet})
	}

	r := router.New(cfg, db, rdb, breaker, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("version", version).Msgf("production service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("telemetry shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
