package main

import (
	"fmt"
	"os"
	"time"

	"tourledger/internal/core/types"
	"tourledger/internal/domain/auth"
	"tourledger/internal/domain/settlement"
	"tourledger/internal/infrastructure/storage/postgres"
	"tourledger/pkg/logger"
)

// config is everything the server reads from the environment.
type config struct {
	Logger     logger.Config
	Port       string
	DB         postgres.PoolConfig
	JWT        auth.JWTConfig
	Settlement settlement.Config
}

func loadConfig() (config, error) {
	env := getEnv("APP_ENV", "development")

	db := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", int(db.MaxConns)); maxConns > 0 {
		db.MaxConns = int32(maxConns)
	}
	db.MaxConnIdleTime = getEnvDuration("DB_CONN_IDLE_TIMEOUT", db.MaxConnIdleTime)

	cfg := config{
		Logger: logger.Config{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: env == "development",
		},
		Port:       getEnv("APP_PORT", "8080"),
		DB:         db,
		JWT:        auth.DefaultJWTConfig(mustEnv("JWT_SECRET")),
		Settlement: settlement.DefaultConfig(),
	}

	cfg.Settlement.MaxGroupSize = getEnvInt("SETTLEMENT_MAX_GROUP_SIZE", cfg.Settlement.MaxGroupSize)
	if raw := os.Getenv("SETTLEMENT_ADMIN_COST_FALLBACK"); raw != "" {
		fallback, err := types.NewMoneyFromString(raw)
		if err != nil {
			return config{}, fmt.Errorf("SETTLEMENT_ADMIN_COST_FALLBACK: %w", err)
		}
		cfg.Settlement.AdministrativeCostFallback = fallback
	}
	if err := cfg.Settlement.Validate(); err != nil {
		return config{}, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
