package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"anoa.com/alienvault/internal/bootstrap"
	"anoa.com/alienvault/internal/config"
	"anoa.com/alienvault/internal/server"
	"anoa.com/alienvault/pkg/database"
	"anoa.com/alienvault/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}
	logger.Init(cfg.AppEnv)
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Options{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Debug:    !cfg.IsProduction(),

		MaxOpenConns: 25,
		MaxIdleConns: 5,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		// Redis only backs rate limits, view buffering and the realtime fan-out.
		log.WithError(err).Warn("continuing without redis")
		redisClient = nil
		if cfg.RealtimeTransport == "redis" {
			cfg.RealtimeTransport = "local"
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}

	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
	log.Info("server stopped")
}
