package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/nesthost/internal/api/ws"
	"github.com/gosuda/nesthost/internal/auth"
	"github.com/gosuda/nesthost/internal/config"
	"github.com/gosuda/nesthost/internal/observability"
	"github.com/gosuda/nesthost/internal/server"
	"github.com/gosuda/nesthost/internal/store/postgres"
	redisstore "github.com/gosuda/nesthost/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer flushCancel()
		if flushErr := shutdownTracing(flushCtx); flushErr != nil {
			log.Warn().Err(flushErr).Msg("tracing shutdown")
		}
	}()

	if cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL and apply the schema.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	checks := []server.HealthCheck{{Name: "postgres", Ping: store.Ping}}

	// Redis backs the product event feed; without it events are dropped.
	var broker ws.Broker
	if cfg.Redis.Enabled {
		pubsub, redisErr := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if redisErr != nil {
			return redisErr
		}
		defer pubsub.Close()
		broker = pubsub
		checks = append(checks, server.HealthCheck{Name: "redis", Ping: pubsub.Ping})
	} else {
		log.Warn().Msg("redis disabled: product event feed unavailable")
	}

	authSvc := auth.NewService(store.Users(), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)

	srv := server.New(ctx, cfg, store, authSvc, ws.NewHub(broker), observability.NewMetrics(), checks...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Block until shutdown signal or listener failure.
	select {
	case <-ctx.Done():
	case startErr := <-errCh:
		if startErr != nil {
			return startErr
		}
		return errors.New("server stopped unexpectedly")
	}
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
