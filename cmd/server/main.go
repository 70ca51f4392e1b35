package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gildhall/gildhall-server-go/internal/auth"
	"github.com/gildhall/gildhall-server-go/internal/config"
	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game"
	"github.com/gildhall/gildhall-server-go/internal/leaderboard"
	"github.com/gildhall/gildhall-server-go/internal/repository"
	"github.com/gildhall/gildhall-server-go/internal/server"
	"github.com/gildhall/gildhall-server-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	contentDir = flag.String("content", "", "optional directory of JSON content files merged over the builtin set")
	version    = "dev" // set via ldflags during build
)

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

	logger.Info("starting gildhall server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	if cfg.Auth.AdminPassword == "" {
		logger.Warn("admin password not configured; admin commands disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Content catalog: builtin set, optionally overlaid with JSON files.
	catalog := content.BuiltinCatalog(logger)
	if *contentDir != "" {
		if err := catalog.LoadDir(*contentDir); err != nil {
			logger.Fatal("failed to load content directory",
				zap.String("dir", *contentDir),
				zap.Error(err))
		}
	}
	if err := catalog.Validate(); err != nil {
		logger.Fatal("content catalog invalid", zap.Error(err))
	}
	logger.Info("content catalog loaded",
		zap.Int("cards", catalog.CardCount()),
		zap.String("overlay", *contentDir),
	)

	// Database is optional: an empty URL runs the server in-memory only.
	var (
		db       *repository.DB
		accounts server.AccountStore
		archive  server.RunArchiver
	)
	if cfg.Database.URL != "" {
		db, err = repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure database schema", zap.Error(err))
		}

		stats := db.Stats()
		logger.Info("database connection pool initialized",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)

		accounts = repository.NewAccountRepository(db)
		archive = repository.NewRunRepository(db)
	} else {
		logger.Info("database url empty; running without persistence")
	}

	sessionMgr := session.NewManager(cfg.Server.LeasePeriod, logger)
	logger.Info("session manager initialized",
		zap.Duration("lease_period", cfg.Server.LeasePeriod),
	)
	go sessionMgr.CleanupExpiredSessions(ctx)

	tokenStore := auth.NewTokenStore(cfg.Auth.PasswordResetTokenTTL)
	logger.Info("auth token store initialized",
		zap.Duration("token_ttl", cfg.Auth.PasswordResetTokenTTL),
	)

	board := leaderboard.NewManager(logger)
	logger.Info("leaderboard initialized")

	runCfg := game.RunConfig{
		StartingGold: cfg.Game.StartingGold,
		HandSize:     cfg.Game.HandSize,
		BaseActions:  cfg.Game.BaseActions,
		EventChance:  cfg.Game.EventChance,
		MaxTurns:     cfg.Game.MaxTurns,
		HouseSlots:   cfg.Game.HouseSlots,
	}
	gameMgr := game.NewManager(catalog, runCfg, cfg.Server.LogDir, logger)
	logger.Info("game manager initialized",
		zap.Int("starting_gold", runCfg.StartingGold),
		zap.Int("max_turns", runCfg.MaxTurns),
	)

	gateway := server.NewGateway(server.GatewayDeps{
		Service:           gameMgr,
		Sessions:          sessionMgr,
		Accounts:          accounts,
		Tokens:            tokenStore,
		Board:             board,
		Archive:           archive,
		MaxSessions:       cfg.Server.MaxSessions,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		AdminPassword:     cfg.Auth.AdminPassword,
		Version:           version,
	}, logger)

	go func() {
		logger.Info("starting websocket gateway", zap.String("address", cfg.Server.Address))
		if serveErr := gateway.ListenAndServe(cfg.Server.Address); serveErr != nil {
			logger.Error("websocket gateway error", zap.Error(serveErr))
		}
	}()

	logger.Info("gildhall server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_sessions", cfg.Server.MaxSessions),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	sessionMgr.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logger.Warn("gateway shutdown error", zap.Error(err))
	}

	logger.Info("gildhall server stopped")
}

// initLogger initializes the zap logger based on configuration
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
