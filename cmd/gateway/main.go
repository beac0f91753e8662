package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prefeitura-digital/authgate/internal/cache"
	"github.com/prefeitura-digital/authgate/internal/config"
	"github.com/prefeitura-digital/authgate/internal/handlers"
	"github.com/prefeitura-digital/authgate/internal/jobs"
	"github.com/prefeitura-digital/authgate/internal/log"
	"github.com/prefeitura-digital/authgate/internal/security"
	"github.com/prefeitura-digital/authgate/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	cookieKey, err := security.DeriveKey(cfg.Session.Secret, "session-cookie", 32)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to derive cookie key")
	}

	handlerSet, err := handlers.NewHandlerSet(logger, cfg, redisClient, cookieKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}
	httpServer := server.NewHTTPServer(cfg, logger, redisClient, cookieKey, handlerSet)

	scheduler := jobs.NewScheduler(redisClient, cfg.Session.MaxIdle, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(httpServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("gateway stopped with error")
	}

	scheduler.Stop()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("gateway exited cleanly")
}
