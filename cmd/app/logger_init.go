package main

import (
	"github.com/osmith/BadgeForge_Go/internal/config"
	"github.com/osmith/BadgeForge_Go/internal/logger"
)

const (
	serviceName = "badgeforge"
	version     = "1.0.0"
)

// initLogger initializes the logger using centralized app configuration
func initLogger(cfg *config.Config) {
	// Source info only in dev
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	loggerConfig := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		serviceName,
		version,
		cfg.Environment,
		addSource,
	)

	logger.InitLogger(loggerConfig)
}
