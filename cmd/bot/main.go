package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/z89kdf9k4p-code/crewbot/internal/app"
	"github.com/z89kdf9k4p-code/crewbot/internal/config"
	"github.com/z89kdf9k4p-code/crewbot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger needs the config, so this error goes to stderr.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	// Sync can fail on stderr-backed sinks; nothing to do about it here.
	defer func() { _ = log.Sync() }()

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
