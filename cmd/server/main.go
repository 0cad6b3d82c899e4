package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/stadium-booking-backend/internal/app"
	"github.com/nekogravitycat/stadium-booking-backend/internal/config"
	"github.com/nekogravitycat/stadium-booking-backend/internal/db"
	"github.com/nekogravitycat/stadium-booking-backend/internal/logging"
	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
	"github.com/nekogravitycat/stadium-booking-backend/internal/notification"
	"github.com/nekogravitycat/stadium-booking-backend/internal/ratelimit"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	env := "dev"
	if cfg.IsProduction {
		env = config.PROD_STRING
	}
	logger := logging.New(logging.Options{
		App:    cfg.AppName,
		Env:    env,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	metrics.Register()

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.ApplySchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		logger.Info().Msg("database schema applied")
	}

	// Redis backs the per-user booking limit when configured.
	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, booking rate limit disabled")
	}

	// RabbitMQ receives booking events when configured.
	var broker notification.JSONPublisher
	if cfg.AMQPURL != "" {
		pub, err := notification.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer pub.Close()
		broker = pub
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:      cfg.IsProduction,
		ProdOrigins:       cfg.ProdOrigins,
		DBPool:            pool,
		JWTSecret:         cfg.JWTSecret,
		JWTTTL:            cfg.JWTAccessTokenTTL,
		PasswordCost:      cfg.BcryptCost,
		Logger:            logger,
		Location:          cfg.Location,
		Redis:             redisClient,
		BookingRateLimit:  cfg.BookingRateLimit,
		BookingRateWindow: cfg.BookingRateWindow,
		APIRateRPS:        cfg.APIRateRPS,
		APIRateBurst:      cfg.APIRateBurst,
		Broker:            broker,
		UploadDir:         cfg.UploadDir,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("timezone", cfg.Location.String()).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let in-flight notifications land before the pool and broker close.
	if err := container.Dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("pending notifications dropped")
	}

	logger.Info().Msg("server exited gracefully")
}
