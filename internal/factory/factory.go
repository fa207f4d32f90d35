package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dstrelkov/seabattle/internal/dependencies/clock"
	"github.com/dstrelkov/seabattle/internal/dependencies/ident"
	"github.com/dstrelkov/seabattle/internal/dependencies/random"
	"github.com/dstrelkov/seabattle/internal/orchestrator"
	"github.com/dstrelkov/seabattle/internal/services/auth"
	"github.com/dstrelkov/seabattle/internal/services/bot"
	"github.com/dstrelkov/seabattle/internal/services/lobby"
	"github.com/dstrelkov/seabattle/internal/services/match"
	"github.com/dstrelkov/seabattle/internal/storage"
	"github.com/dstrelkov/seabattle/internal/storage/memory"
	redisstorage "github.com/dstrelkov/seabattle/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Ident  ident.Generator

	// Services
	AuthService     *auth.Service
	MatchController *match.Controller
	LobbyController *lobby.Controller
	BotService      *bot.Service
	Orchestrator    *orchestrator.Orchestrator
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), ident.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, idents ident.Generator, logger *slog.Logger) *App {
	authService := auth.New(store, idents, clk, logger)
	matchController := match.NewController(store, idents, clk, logger)
	lobbyController := lobby.NewController(store, matchController, idents, clk, logger)
	botService := bot.NewService(rnd, logger)
	orch := orchestrator.New(store, authService, lobbyController, matchController, botService, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Ident:           idents,
		AuthService:     authService,
		MatchController: matchController,
		LobbyController: lobbyController,
		BotService:      botService,
		Orchestrator:    orch,
	}
}
