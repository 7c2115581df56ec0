package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/liver-risk-server/internal/config"
	"github.com/liver-risk-server/internal/logging"
	"github.com/liver-risk-server/internal/mcp"
	"github.com/liver-risk-server/internal/model"
	"github.com/liver-risk-server/internal/service"
	"github.com/liver-risk-server/internal/setup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "setup" {
		if err := setup.NewCLI(os.Stdin, os.Stdout).Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

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

	// stdout carries the protocol, so logs must never go there
	logCfg := cfg.Logging
	if logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	predictionService := service.NewPredictionService(logger, model.NewLoader(logger), cfg.Model.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Model.Preload {
		if err := predictionService.WarmUp(ctx); err != nil {
			logger.WithError(err).WithField("model_path", cfg.Model.Path).Fatal("Failed to load model")
		}
	}

	mcpServer := mcp.NewServer(cfg.MCP, predictionService, logger)

	if err := mcpServer.Run(ctx); err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("MCP server failed")
	}

	logger.Info("Liver risk MCP server stopped")
}
