package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func loadConfig(logger *log.Logger) *shared.Config {
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err == nil {
			return config
		}
		logger.Warn("failed to load config, using defaults", "error", err)
	}

	config := shared.DefaultConfig()
	if err := shared.ApplyEnv(config); err != nil {
		logger.Warn("ignoring environment overrides", "error", err)
	}
	return config
}

func main() {
	logger := shared.NewLogger(nil)
	config := loadConfig(logger)
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	jar, err := services.NewFileJar(config.Session.CookieFile, config.Server.BaseURL)
	if err != nil {
		logger.Fatalf("failed to open session cookies: %v", err)
	}

	client := services.NewClient(services.ClientOpts{
		BaseURL:           config.Server.BaseURL,
		Jar:               jar,
		Timeout:           config.Server.TimeoutDuration(),
		RequestsPerSecond: config.Server.RequestsPerSecond,
		Logger:            logger,
	})

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Client:     client,
		Jar:        jar,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "moodtune",
		Usage:    "Emotion-driven music recommendations from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
