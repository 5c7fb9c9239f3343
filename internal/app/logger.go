package app

import (
	"os"

	"food-dispatch/internal/config"
	"food-dispatch/internal/logx"
)

// newLogger builds the process logger for the configured backend.
func newLogger(cfg *config.Config) (logx.Logger, error) {
	if cfg.Log.Backend == "zap" {
		return logx.NewZapProduction(cfg.Log.Level)
	}
	return logx.NewJSON(os.Stdout, cfg.Log.Level), nil
}
