package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/stonecluster/internal/dependencies/clock"
	"github.com/mcoot/stonecluster/internal/dependencies/ids"
	"github.com/mcoot/stonecluster/internal/dependencies/random"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/relay"
	"github.com/mcoot/stonecluster/internal/services/room"
	"github.com/mcoot/stonecluster/internal/storage"
	"github.com/mcoot/stonecluster/internal/storage/memory"
	redisstorage "github.com/mcoot/stonecluster/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired relay components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    ids.Generator

	// Rules advertised to peers
	Rules model.Ruleset

	// Services
	RoomController *room.Controller
	Hub            *relay.Hub
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
	// Rules is the ruleset peers should play with (optional)
	// If zero value, defaults to model.DefaultRuleset()
	Rules model.Ruleset
	// RoomConfig holds room lifecycle settings (optional)
	RoomConfig room.Config
	// RelayConfig holds relay loop settings (optional)
	RelayConfig relay.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	rules := cfg.Rules
	if rules == (model.Ruleset{}) {
		rules = model.DefaultRuleset()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
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
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), ids.New(), rules, cfg.RoomConfig, cfg.RelayConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	idGen ids.Generator,
	rules model.Ruleset,
	roomCfg room.Config,
	relayCfg relay.Config,
	logger *slog.Logger,
) *App {
	if roomCfg == (room.Config{}) {
		roomCfg = room.DefaultConfig()
	}
	roomController := room.NewController(store, clk, rnd, roomCfg, logger)
	hub := relay.NewHub(roomController, clk, idGen, relayCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		IDs:            idGen,
		Rules:          rules,
		RoomController: roomController,
		Hub:            hub,
	}
}
