package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apiHttp "github.com/chess2earn/backend/internal/api/http"
	"github.com/chess2earn/backend/internal/cache"
	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/db"
	"github.com/chess2earn/backend/internal/queue/asynqserver"
	"github.com/chess2earn/backend/internal/queue/client"
	"github.com/chess2earn/backend/internal/repository"
	"github.com/chess2earn/backend/internal/server"
	"github.com/chess2earn/backend/internal/service"
	"github.com/chess2earn/backend/internal/worker"
	"github.com/chess2earn/backend/pkg/auth"
	emailProvider "github.com/chess2earn/backend/pkg/email"
	"github.com/chess2earn/backend/pkg/email/smtp"
	"github.com/chess2earn/backend/pkg/hash"
	"github.com/chess2earn/backend/pkg/logger"
	"github.com/chess2earn/backend/pkg/otp"

	"go.uber.org/zap"
)

func main() {
	// Init cfg from environment variables
	cfg := config.MustLoad()

	if err := logger.Init(cfg.Env); err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting backend api", zap.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	// The log-the-code bypass must never run in production.
	if cfg.Env == "production" && !cfg.Email.Enabled {
		logger.Fatal("email delivery must be enabled in production")
	}

	// Init database
	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		logger.Error("mysql connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := dbMySQL.Close(); err != nil {
			logger.Error("error when closing mysql", zap.Error(err))
		}
	}()
	logger.Info("mysql connection done")

	redisClient, err := cache.NewRedis(cfg.Cache)
	if err != nil {
		logger.Error("redis connect problem", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("error when closing redis", zap.Error(err))
		}
	}()
	logger.Info("redis connection done")

	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	if err != nil {
		logger.Error("auth manager creation err", zap.Error(err))
		return
	}

	var emailSender emailProvider.Sender
	if cfg.Email.Enabled {
		emailSender, err = smtp.NewSMTPSender(cfg.SMTP.From, cfg.SMTP.Pass, cfg.SMTP.Host, cfg.SMTP.Port)
		if err != nil {
			logger.Error("smtp sender creation failed", zap.Error(err))
			return
		}
	}

	// Queue client for request-path dispatch, server for delivery.
	queueClient := client.New(asynqserver.RedisOptions(cfg.Cache))
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Error("error when closing queue client", zap.Error(err))
		}
	}()

	workers := worker.NewWorkers(worker.Deps{
		EmailProvider: emailSender,
		Config:        cfg,
	})
	asynqSrv, asynqMux := asynqserver.New(cfg.Cache, workers)
	go func() {
		if err := asynqSrv.Run(asynqMux); err != nil {
			logger.Error("error occurred while running asynq server", zap.Error(err))
		}
	}()

	// Services, Repos & API Handlers
	repos := repository.NewRepositories(dbMySQL)
	services := service.NewServices(service.Deps{
		Config:        cfg,
		CodeHasher:    hash.NewSHA256Hasher(cfg.Auth.CodeSalt),
		TokenManager:  tokenManager,
		CodeGenerator: otp.NewCodeGenerator(),
		Notifier:      queueClient,
		Repos:         repos,
	})
	handlers := apiHttp.NewHandlers(services, tokenManager, cfg, dbMySQL, redisClient)

	// HTTP Server
	srv := server.NewServer(cfg, handlers.Init(cfg))
	go func() {
		if err := srv.Run(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error occurred while running http server", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("port", cfg.HttpServer.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	const timeout = 5 * time.Second

	ctx, shutdown := context.WithTimeout(context.Background(), timeout)
	defer shutdown()

	if err := srv.Stop(ctx); err != nil {
		logger.Error("failed to stop server", zap.Error(err))
	}

	asynqSrv.Shutdown()

	logger.Info("app stopped")
}
