package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shell_game/internal/config"
	"shell_game/internal/db"
	httpServer "shell_game/internal/http"
	"shell_game/internal/http/middleware"
	"shell_game/internal/logger"
	"shell_game/internal/repository"
	"shell_game/internal/scheduler"
	"shell_game/internal/service"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	dbPool := db.Connect(cfg.DatabaseURL)
	if dbPool != nil {
		defer dbPool.Close()
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedis()

	opts := service.ShellOptions{
		Script:     cfg.Script(),
		RevealBall: cfg.RevealBall,
		SessionTTL: cfg.SessionTTL,
	}
	if dbPool != nil {
		opts.Recorder = repository.NewRoundRepository(dbPool)
	}
	shell := service.NewShellService(scheduler.New(quartz.NewReal()), opts)
	defer shell.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	shell.StartCleanup(ctx, 5*time.Minute)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(cfg.AllowedOrigin))

	hub := httpServer.RegisterRoutes(r, dbPool, shell, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion,
			"shuffles", cfg.ShuffleCount, "interval", cfg.ShuffleInterval, "intro", cfg.IntroDelay)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
