package main

import (
	"log/slog"

	"github.com/yanqian/taskhub/internal/infra/config"
	"github.com/yanqian/taskhub/pkg/logger"
)

const serviceName = "task-service"

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.New(serviceName, cfg.Log.Level)
}
