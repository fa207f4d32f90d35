package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/dstrelkov/seabattle/internal/api"
	"github.com/dstrelkov/seabattle/internal/factory"
	redisstorage "github.com/dstrelkov/seabattle/internal/storage/redis"
	"github.com/dstrelkov/seabattle/internal/transport/ws"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		port        int
		storageType string
		redisURL    string
	)

	rootCmd := &cobra.Command{
		Use:   "seabattle",
		Short: "Battleship game server",
		Long: `seabattle runs the battleship game server: the websocket game
endpoint on /ws plus plain-HTTP health and leaderboard endpoints.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(port, storageType, redisURL)
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", envInt("PORT", 3000), "Port to listen on (env: PORT)")
	rootCmd.Flags().StringVar(&storageType, "storage", os.Getenv("STORAGE_TYPE"), "Storage backend: memory, redis (env: STORAGE_TYPE)")
	rootCmd.Flags().StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis connection URL (env: REDIS_URL)")

	return rootCmd
}

func run(port int, storageType, redisURL string) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: storageType,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		if redisURL == "" {
			logger.Error("redis URL required when storage is redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Combine the websocket endpoint and the plain HTTP endpoints
	hub := ws.NewHub(app.Orchestrator, logger)
	router := mux.NewRouter()
	router.HandleFunc("/ws", hub.HandleWS)
	api.NewHandler(app.Storage, logger).Register(router)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
	return nil
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
