// @title Assessment Results API
// @version 1.0
// @description Admin API for assessment result staging, DOAR scoring and transfer.

// @host localhost:8080
// @BasePath /api

package main

import (
	"assessment_results_backend/internal/app"
	"assessment_results_backend/internal/config"
	"assessment_results_backend/pkg/configwatcher"
	"assessment_results_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"path/filepath"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on start even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration finished, exiting")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := configwatcher.WatchConfig(ctx, filepath.Join(*configDir, "config.yaml"), application.ApplyConfig)
		if err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()

	application.Run()
}
