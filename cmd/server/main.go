package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/liver-risk-server/internal/api"
	"github.com/liver-risk-server/internal/config"
	"github.com/liver-risk-server/internal/logging"
	"github.com/liver-risk-server/internal/model"
	"github.com/liver-risk-server/internal/service"
	"github.com/liver-risk-server/internal/session"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	loader := model.NewLoader(logger)
	predictionService := service.NewPredictionService(logger, loader, cfg.Model.Path)
	sessions := session.NewStore(cfg.Session, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The model is loaded once for the life of the process
	if cfg.Model.Preload {
		if err := predictionService.WarmUp(ctx); err != nil {
			logger.WithError(err).WithField("model_path", cfg.Model.Path).Fatal("Failed to load model")
		}
	}

	server, err := api.NewServer(cfg, predictionService, sessions, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": configManager.Environment(),
		"model_path":  cfg.Model.Path,
	}).Info("Starting liver risk server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, gracefully shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
