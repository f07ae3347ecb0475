package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flitz/config"
	"flitz/internal/cache"
	"flitz/internal/database"
	"flitz/internal/jobs"
	"flitz/internal/logger"
	"flitz/internal/router"
)

func main() {
	cfg := config.Load()
	logger.Init(&cfg.Log)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	rdb := cache.NewRedisCache(&cfg.Redis)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx)
		cancel()
		if err != nil {
			logger.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
	}

	engine, deps := router.Setup(cfg, db, rdb)

	jobCtx, stopJobs := context.WithCancel(context.Background())
	scheduler := jobs.NewScheduler()
	scheduler.Register(jobs.NewChronoWaveJob(deps.ChronoWave, cfg.ChronoWave.Interval))
	scheduler.Register(jobs.NewRevealJob(deps.Reveal, cfg.Reveal.Interval))
	scheduler.Start(jobCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopJobs()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
