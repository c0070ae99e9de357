package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cardbinder/cardbinder/internal/api"
	"github.com/cardbinder/cardbinder/internal/auth"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/rules"
	"github.com/cardbinder/cardbinder/internal/scryfall"
	"github.com/cardbinder/cardbinder/internal/session"
	"github.com/cardbinder/cardbinder/internal/storage"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.cardbinder/config.toml)")
	dbPath     = flag.String("db-path", "", "Path to the SQLite database (overrides config)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	rulesPath  = flag.String("rules-path", "", "Path to the comprehensive rules text file (overrides config)")
	debugMode  = flag.Bool("debug", false, "Enable verbose debug logging")
)

// getDBPath resolves the database location: flag, then environment,
// then config, then the default under the home directory.
func getDBPath(cfg *config.Config) (string, error) {
	if *dbPath != "" {
		return *dbPath, nil
	}
	if env := os.Getenv("CARDBINDER_DB_PATH"); env != "" {
		return env, nil
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cardbinder", "cardbinder.db"), nil
}

func run() error {
	// Optional .env for local development overrides
	_ = godotenv.Load()

	flag.Parse()

	level := slog.LevelInfo
	if *debugMode || os.Getenv("CARDBINDER_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *port != 0 {
		cfg.Server.Port = *port
	} else if env := os.Getenv("CARDBINDER_PORT"); env != "" {
		p, convErr := strconv.Atoi(env)
		if convErr != nil {
			return fmt.Errorf("invalid CARDBINDER_PORT %q: %w", env, convErr)
		}
		cfg.Server.Port = p
	}
	if *rulesPath != "" {
		cfg.Rules.Path = *rulesPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path, err := getDBPath(cfg)
	if err != nil {
		return err
	}
	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database ready", "path", db.Path())

	var ruleSections []rules.Section
	if cfg.Rules.Path != "" {
		ruleSections, err = rules.LoadFile(cfg.Rules.Path)
		if err != nil {
			logger.Warn("rules document unavailable", "path", cfg.Rules.Path, "error", err)
		} else {
			logger.Info("rules document loaded", "sections", len(ruleSections))
		}
	}

	client := scryfall.NewClient(cfg.Scryfall.UserAgent)
	userRepo := repository.NewUserRepo(db.DB)
	collectionRepo := repository.NewCollectionRepo(db.DB)
	authService := auth.NewService(userRepo)
	sessions := session.NewManager(cfg, client, collectionRepo, logger)

	server := api.NewServer(api.Deps{
		Config:      cfg,
		AuthService: authService,
		Sessions:    sessions,
		Prices:      client,
		Rules:       ruleSections,
		Logger:      logger,
	})
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	// Pending collection writes flush here; skipping this loses the
	// tail of the last debounce window.
	if err := sessions.Close(ctx); err != nil {
		return fmt.Errorf("failed to close sessions: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
