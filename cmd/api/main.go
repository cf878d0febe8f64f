package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/auth"
	"github.com/filegate/service/internal/config"
	"github.com/filegate/service/internal/file"
	appMiddleware "github.com/filegate/service/internal/middleware"
	"github.com/filegate/service/internal/ratelimit"
	"github.com/filegate/service/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration failed")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("token store connection failed")
	}
	cancel()

	store, err := storage.NewMinioStorage(
		cfg.MinioAddr(),
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("object storage init failed")
	}

	// Wire dependencies: storage → provisioner → service → handler
	buckets := storage.NewProvisioner(store, cfg.BucketPrefix, cfg.AutoCreateBuckets)
	fileSvc := file.NewService(store, buckets, cfg.AllowedMimeTypes, cfg.UploadURLExpiresIn)
	fileHandler := file.NewHandler(fileSvc)

	validator := auth.NewValidator(rdb)
	limiter := ratelimit.New(rdb, ratelimit.PerMinute(cfg.RateLimitUploadURLMax))

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/files", func(r chi.Router) {
		r.With(
			appMiddleware.RateLimit(limiter),
			appMiddleware.RequireAuth(validator),
			appMiddleware.BodyLimit(cfg.MaxUploadSize),
		).Post("/upload-url", fileHandler.CreateUploadURL)

		r.With(
			appMiddleware.RequireAuth(validator),
		).Delete("/{objectKey}", fileHandler.DeleteObject)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("file gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	logger.Info().Msg("shutting down gracefully")

	// Drain in-flight requests before releasing the token-store connection.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		logger.Error().Err(err).Msg("closing token store connection")
	}

	logger.Info().Msg("server stopped")
}
