package config

import (
	"go.uber.org/zap"
)

// NewLogger returns a development logger for local runs and a JSON production
// logger everywhere else.
func NewLogger(cfg *Config) *zap.SugaredLogger {
	if cfg.IsDevelopment() {
		return zap.Must(zap.NewDevelopment()).Sugar()
	}
	return zap.Must(zap.NewProduction()).Sugar()
}
