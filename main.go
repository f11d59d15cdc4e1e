package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-court-api/config"
	"food-court-api/events"
	"food-court-api/handlers"
	"food-court-api/middleware"
	"food-court-api/routes"
	"food-court-api/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger := config.NewLogger(cfg)
	defer logger.Sync()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "" && !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		logger.Fatalw("failed to open database", "driver", cfg.DBDriver, "error", err)
	}
	logger.Infow("database connected and migrated", "driver", cfg.DBDriver)

	publisher := buildPublisher(cfg, logger)
	disk := storage.NewLocalDisk(cfg.StorageRoot, cfg.StorageURL)
	tokens := middleware.NewTokens(db, cfg.JWTSecret, cfg.TokenTTL, logger)
	h := handlers.New(db, tokens, disk, publisher, cfg.Runtime, logger, cfg.MaxImageBytes)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	r.MaxMultipartMemory = 8 << 20

	// CORS for the single-page frontend
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	routes.SetupRoutes(r, h, cfg.StorageRoot, cfg.StorageURL)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		logger.Infow("signal caught", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		shutdown <- srv.Shutdown(ctx)
	}()

	logger.Infow("server running", "addr", srv.Addr, "env", cfg.AppEnv)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("failed to start server", "error", err)
	}
	if err := <-shutdown; err != nil {
		logger.Errorw("graceful shutdown failed", "error", err)
	}

	if err := publisher.Close(); err != nil {
		logger.Errorw("error closing event publishers", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server has stopped")
}

// buildPublisher wires the configured notification sinks. A sink that cannot
// be reached at startup is skipped.
func buildPublisher(cfg *config.Config, logger *zap.SugaredLogger) events.Publisher {
	var pubs events.Multi

	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			logger.Warnw("RabbitMQ unavailable, pre-order events will not be queued", "error", err)
		} else {
			logger.Infow("connected to RabbitMQ", "queue", cfg.RabbitMQQueue)
			pubs = append(pubs, p)
		}
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		p, err := events.NewTelegramPublisher(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warnw("Telegram bot unavailable, admin chat will not be notified", "error", err)
		} else {
			pubs = append(pubs, p)
		}
	}

	if len(pubs) == 0 {
		return events.Nop{}
	}
	return pubs
}
