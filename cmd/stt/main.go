package main

import (
	"context"
	"fmt"
	"os"

	"github.com/manish3-4/speech-to-text-frontend/config"
	"github.com/manish3-4/speech-to-text-frontend/internal/app"
	"github.com/manish3-4/speech-to-text-frontend/internal/cli"
	"github.com/manish3-4/speech-to-text-frontend/internal/logging"
	"github.com/manish3-4/speech-to-text-frontend/internal/output"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logging.Sync(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).ExecuteContext(context.Background())
}
