package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/pha-bob-sync/internal/app"
	"github.com/Adda-Baaj/pha-bob-sync/internal/config"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "masterdata import failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(syncer.ScriptMasterDataImport)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("masterdata import starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := app.NewMasterDataImport(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize masterdata import", "error", err.Error())
		return err
	}

	return job.Run(ctx)
}
