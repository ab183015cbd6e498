// Shot Coach - context-aware photo-assessment relay server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/shotcoach/internal/api"
	"github.com/ashureev/shotcoach/internal/assess"
	"github.com/ashureev/shotcoach/internal/bridge"
	"github.com/ashureev/shotcoach/internal/config"
	"github.com/ashureev/shotcoach/internal/events"
	"github.com/ashureev/shotcoach/internal/middleware"
	"github.com/ashureev/shotcoach/internal/store"
	"github.com/ashureev/shotcoach/internal/vision"
	"github.com/ashureev/shotcoach/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
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

	slog.Info("Starting server",
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"policy", cfg.AcceptancePolicy,
		"dev", cfg.IsDevelopment(),
	)

	// Initialize the session store.
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

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Session store connected", "driver", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartTTLSweeper(ctx, sessions, cfg.SessionTTL)

	policy, err := assess.ParseAcceptancePolicy(cfg.AcceptancePolicy)
	if err != nil {
		slog.Error("Invalid acceptance policy", "error", err)
		os.Exit(1)
	}

	hub := events.NewHub()
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
		assess.WithEventsHub(hub),
	)

	// Both transports expose the same contract: serve assessments in
	// process, or relay them to a bridge worker when BRIDGE_CMD is set.
	var assessor assess.Assessor = service
	if cfg.BridgeCmd != "" {
		relay := bridge.NewRelay(cfg.BridgeCmd)
		if err := relay.Start(ctx); err != nil {
			slog.Error("Failed to start bridge worker", "error", err)
			os.Exit(1)
		}
		defer func() {
			if closeErr := relay.Close(); closeErr != nil {
				slog.Error("Failed to close bridge relay", "error", closeErr)
			}
		}()
		assessor = relay
		slog.Info("Assessments relayed through bridge worker", "cmd", cfg.BridgeCmd)
	}

	assessmentHandler := api.NewAssessmentHandler(assessor, cfg.MaxBodySize)
	wsHandler := events.NewWSHandler(hub)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	assessmentHandler.RegisterRoutes(r)
	r.Get("/ws/shoots/{shootID}", wsHandler.ServeHTTP)
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
		// ReadTimeout stays generous: assessment bodies carry full-size
		// photos. WriteTimeout must outlive the vision call deadline.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Vision.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
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
