package app

import (
	"go-leave/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON in production, console otherwise.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
