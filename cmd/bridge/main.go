// Shot Coach bridge worker: serves assessment requests as a child process
// over line-delimited JSON on stdin/stdout. Logs go to stderr so stdout
// stays protocol-only.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/ashureev/shotcoach/internal/bridge"
	"github.com/ashureev/shotcoach/internal/config"
	"github.com/ashureev/shotcoach/internal/store"
	"github.com/ashureev/shotcoach/internal/vision"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	sessions, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	policy, err := assess.ParseAcceptancePolicy(cfg.AcceptancePolicy)
	if err != nil {
		slog.Error("Invalid acceptance policy", "error", err)
		os.Exit(1)
	}

	visionClient := vision.NewHTTPClient(vision.HTTPConfig{
		BaseURL:     cfg.Vision.BaseURL,
		APIKey:      cfg.Vision.APIKey,
		Model:       cfg.Vision.Model,
		MaxTokens:   cfg.Vision.MaxTokens,
		Temperature: cfg.Vision.Temperature,
	})

	service := assess.NewService(sessions, visionClient,
		assess.WithAcceptancePolicy(policy),
		assess.WithVisionTimeout(cfg.Vision.Timeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bridge worker ready", "store", cfg.StoreDriver, "policy", cfg.AcceptancePolicy)

	worker := bridge.NewWorker(service, os.Stdout)
	if err := worker.Run(ctx, os.Stdin); err != nil {
		slog.Error("Bridge worker failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Bridge worker stopped")
}

// newStore selects the session store driver from configuration.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return store.NewSQLite(cfg.DBPath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return store.NewRedis(client, cfg.SessionTTL), nil
	default:
		return store.NewMemory(), nil
	}
}
