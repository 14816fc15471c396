package main

import (
	"context"
	"os"

	"github.com/oggyb/skillswap/internal/app"
	"github.com/oggyb/skillswap/internal/config"
	"github.com/oggyb/skillswap/internal/logger"
	"github.com/oggyb/skillswap/internal/seed"
)

func main() {
	// Load configuration
	cfg := config.New()

	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx := context.Background()
	appCtx, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open state layout", "err", err)
		os.Exit(1)
	}

	seedErr := seed.Demo(ctx, appCtx, cfg.Auth.SeedPassword)
	if err := appCtx.Close(ctx); err != nil {
		log.Error("failed to close state layout", "err", err)
	}
	if seedErr != nil {
		log.Error("failed to seed", "err", seedErr)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
