package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/stonecluster/internal/api"
	"github.com/mcoot/stonecluster/internal/factory"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/relay"
	"github.com/mcoot/stonecluster/internal/services/room"
	redisstorage "github.com/mcoot/stonecluster/internal/storage/redis"
)

// loadConfig builds the factory and server configuration from the environment
func loadConfig() (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		StorageType: os.Getenv("STORAGE_TYPE"),
		Rules:       model.DefaultRuleset(),
		RoomConfig:  room.DefaultConfig(),
		RelayConfig: relay.DefaultConfig(),
	}
	serverCfg := api.DefaultServerConfig()

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverCfg, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	var err error
	if serverCfg.Port, err = envInt("PORT", serverCfg.Port); err != nil {
		return cfg, serverCfg, err
	}

	if cfg.RoomConfig.IdleTimeout, err = envDuration("ROOM_IDLE_TIMEOUT", cfg.RoomConfig.IdleTimeout); err != nil {
		return cfg, serverCfg, err
	}
	if cfg.RoomConfig.DisconnectGrace, err = envDuration("DISCONNECT_GRACE", cfg.RoomConfig.DisconnectGrace); err != nil {
		return cfg, serverCfg, err
	}
	if cfg.RelayConfig.SweepInterval, err = envDuration("ROOM_SWEEP_INTERVAL", cfg.RelayConfig.SweepInterval); err != nil {
		return cfg, serverCfg, err
	}
	if cfg.RedisConfig != nil {
		// Outlive the sweep that would evict the room, so members still get room_closed
		cfg.RedisConfig.RoomTTL = cfg.RoomConfig.IdleTimeout + cfg.RelayConfig.SweepInterval
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.RelayConfig.AllowedOrigins = strings.Split(origins, ",")
	}

	if v := os.Getenv("CLUSTER_SCOPE"); v != "" {
		cfg.Rules.Scope = model.ClusterScope(v)
	}
	if v := os.Getenv("COLLISION_MODE"); v != "" {
		cfg.Rules.Collision = model.CollisionMode(v)
	}
	if cfg.Rules.StoneRadius, err = envFloat("STONE_RADIUS", cfg.Rules.StoneRadius); err != nil {
		return cfg, serverCfg, err
	}
	if cfg.Rules.PlayAreaRadius, err = envFloat("PLAY_AREA_RADIUS", cfg.Rules.PlayAreaRadius); err != nil {
		return cfg, serverCfg, err
	}

	return cfg, serverCfg, cfg.Rules.Validate()
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
