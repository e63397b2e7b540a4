package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glowfit-dev/glowfit/db"
	"github.com/glowfit-dev/glowfit/internal/auth"
	"github.com/glowfit-dev/glowfit/internal/cache"
	"github.com/glowfit-dev/glowfit/internal/config"
	"github.com/glowfit-dev/glowfit/internal/logger"
	"github.com/glowfit-dev/glowfit/internal/middleware"
	"github.com/glowfit-dev/glowfit/internal/router"
	"github.com/glowfit-dev/glowfit/internal/scheduler"
	"github.com/glowfit-dev/glowfit/internal/services"
	"github.com/glowfit-dev/glowfit/internal/storage"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	godotenv.Load()

	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.Load(*configFile)

	log := logger.New(cfg.Log)
	defer log.Sync()

	if err := auth.Init(cfg.JWT.Secret); err != nil {
		log.Fatal("jwt_init_failed", zap.Error(err))
	}

	database, err := db.Connect(cfg.DSN())

	if err != nil {
		log.Fatal("database_connect_failed", zap.Error(err))
	}

	if err := db.Migrate(database); err != nil {
		log.Fatal("database_migrate_failed", zap.Error(err))
	}

	// Cache is optional; a failed redis connection degrades to no caching.
	if err := cache.Init(cfg.Redis, log); err != nil {
		log.Warn("cache_init_failed", zap.Error(err))
	}

	middleware.RegisterMetrics()

	store := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)
	notifier := services.NewNotifier(log)

	sched := scheduler.New(database, log, notifier, time.Duration(cfg.Scheduler.PollSeconds)*time.Second)
	sched.Start()

	r := router.New(router.Deps{
		DB:       database,
		Logger:   log,
		Config:   cfg,
		Storage:  store,
		Notifier: notifier,
	})

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info("server_started", zap.String("addr", cfg.Addr()))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server_failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server_shutdown_failed", zap.Error(err))
	}

	sched.Stop()
	cache.Close()

	if err := db.Close(database); err != nil {
		log.Error("database_close_failed", zap.Error(err))
	}

	log.Info("stopped")
}
