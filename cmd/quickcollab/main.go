package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quickcollab/quickcollab/internal/auth"
	"github.com/quickcollab/quickcollab/internal/config"
	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/server"
	"github.com/quickcollab/quickcollab/internal/store/postgres"
	redisstore "github.com/quickcollab/quickcollab/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("QC_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("QC_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Optional Redis mirror: broadcasts are republished to external consumers
	// when an address is configured.
	var mirror realtime.Mirror
	if cfg.Redis.Addr != "" {
		publisher, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer publisher.Close()
		mirror = publisher
		log.Info().Str("addr", cfg.Redis.Addr).Msg("broadcast mirror enabled")
	}

	// Wire the realtime core.
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, mirror)
	coordinator := realtime.NewCoordinator(store.Users(), store.Boards(), store.Tasks(), store.Comments(), dispatcher)

	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.TokenTTL)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, store, authSvc, registry, coordinator)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
