// Package main provides the entrypoint for the Guichet worker. The worker
// consumes notification and retention jobs from Pub/Sub.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/guichethq/guichet/internal/claim"
	"github.com/guichethq/guichet/internal/database"
	"github.com/guichethq/guichet/internal/notify"
	"github.com/guichethq/guichet/internal/retention"
	"github.com/guichethq/guichet/internal/storage"
	"github.com/guichethq/guichet/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "guichet-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Guichet worker")

	cfg, err := worker.LoadConfig(os.Getenv("WORKER_CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	pool, err := database.ConnectURL(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("database connected")

	// Initialize file storage
	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		bucket = "guichet-claim-files"
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket: bucket,
		Region: os.Getenv("AWS_REGION"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	// Initialize mailer
	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize mailer")
	}
	log.Info().Str("host", cfg.SMTP.Host).Msg("mailer initialized")

	// Initialize retention jobs
	retentionJobs := retention.NewJobs(retention.JobsConfig{
		Repository: claim.NewPostgresRepository(pool),
		Files:      store,
		Policy: retention.Policy{
			ArchiveAge:    cfg.Retention.ArchiveAge,
			PurgeAge:      cfg.Retention.PurgeAge,
			FileSweepDays: cfg.Retention.FileSweepDays,
		},
		Logger: log,
	})

	// Initialize Pub/Sub handler
	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.ProjectID,
		SubscriptionName: cfg.SubscriptionName,
		Mailer:           mailer,
		Retention:        retentionJobs,
		FileSweepDays:    cfg.Retention.FileSweepDays,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub handler")
		}
	}()

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start consuming messages
	errCh := make(chan error, 1)
	go func() {
		errCh <- handler.Start(ctx)
	}()

	// Wait for interrupt signal or receive failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("pubsub receive failed")
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
