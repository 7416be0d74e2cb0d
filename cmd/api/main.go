package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/medisure/claims-portal/internal/config"
	"github.com/medisure/claims-portal/internal/events"
	"github.com/medisure/claims-portal/internal/infra"
	"github.com/medisure/claims-portal/internal/logging"
	"github.com/medisure/claims-portal/internal/routes"
	"github.com/medisure/claims-portal/internal/secrets"
	"github.com/medisure/claims-portal/internal/server"
	"github.com/medisure/claims-portal/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	deps := routes.Deps{Cfg: cfg, Logger: logger}

	needsAWS := cfg.DynamoTable != "" || cfg.S3Bucket != "" || cfg.SQSQueueURL != "" || cfg.JWTSecret == ""
	var dynamoClient *dynamodb.Client
	if needsAWS {
		aws, err := infra.NewAWSClients(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			logger.Error("configure aws clients", "error", err)
			os.Exit(1)
		}
		if cfg.DynamoTable != "" {
			dynamoClient = aws.Dynamo
		}
		if cfg.S3Bucket != "" {
			deps.Store = storage.NewS3Store(aws.S3, cfg.S3Bucket, cfg.PresignTTL)
		}
		if cfg.SQSQueueURL != "" {
			deps.Publisher = events.NewSQSPublisher(aws.SQS, cfg.SQSQueueURL)
		}
		if cfg.JWTSecret == "" {
			// Refresh periodically so a rotated secret is picked up without a restart.
			deps.Secrets = secrets.NewManagerProvider(aws.Secrets, cfg.JWTSecretName, 15*time.Minute)
		}
	}
	deps.Dynamo = dynamoClient
	if deps.Secrets == nil {
		deps.Secrets = secrets.Static(cfg.JWTSecret)
	}

	if cfg.DatabaseURL != "" {
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.DB = db
	}

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
