package handlers

import (
	"food-court-api/config"
	"food-court-api/events"
	"food-court-api/middleware"
	"food-court-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler carries the dependencies shared by every controller.
type Handler struct {
	DB            *gorm.DB
	Tokens        *middleware.Tokens
	Disk          storage.Disk
	Events        events.Publisher
	Runtime       *config.Runtime
	Logger        *zap.SugaredLogger
	MaxImageBytes int64
}

func New(db *gorm.DB, tokens *middleware.Tokens, disk storage.Disk, pub events.Publisher,
	runtime *config.Runtime, logger *zap.SugaredLogger, maxImageBytes int64) *Handler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handler{
		DB:            db,
		Tokens:        tokens,
		Disk:          disk,
		Events:        pub,
		Runtime:       runtime,
		Logger:        logger,
		MaxImageBytes: maxImageBytes,
	}
}
