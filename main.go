package main

import (
	"context"
	"log"
	"time"

	"click-collect/cmd"
	"click-collect/internal/data/repository"
	"click-collect/internal/wire"
	"click-collect/pkg/database"
	"click-collect/pkg/sigctx"
	"click-collect/pkg/utils"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.StringP("config", "c", ".env", "path to the env config file")
	pflag.Parse()

	ctx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting application",
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, config, logger)

	go cmd.RunSessionJanitor(ctx, app.Service.Auth,
		time.Duration(config.Auth.JanitorMinutes)*time.Minute, logger)

	if err := cmd.NewAPIServer(app.Router, config.App.Port, logger).Run(ctx); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}

	logger.Info("Application is closed")
}
