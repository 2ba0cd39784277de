package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcanarena/arena-server-go/internal/cards"
	"github.com/arcanarena/arena-server-go/internal/config"
	"github.com/arcanarena/arena-server-go/internal/game"
	"github.com/arcanarena/arena-server-go/internal/journal"
	"github.com/arcanarena/arena-server-go/internal/server"
)

var configPath = flag.String("config", "config/config.yaml", "path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting arena server", zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	var store journal.Store
	if cfg.Database.URL != "" {
		pgStore, err := journal.NewPGStore(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect journal database", zap.Error(err))
		}
		store = pgStore
	} else {
		logger.Warn("no database configured; journaling in memory")
		store = journal.NewMemStore()
	}
	defer store.Close()

	db := cards.BasicSet()
	logger.Info("card database initialized", zap.Int("cards", db.Size()))

	engine := game.NewEngine(logger, db)
	gateway := server.NewGateway(engine, store, logger)

	if err := gateway.Serve(ctx, cfg.Server.Address, cfg.Server.ShutdownTimeout); err != nil {
		logger.Fatal("gateway error", zap.Error(err))
	}

	logger.Info("arena server stopped")
}

// initLogger builds the zap logger from configuration.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
