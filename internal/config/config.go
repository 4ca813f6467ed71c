package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kapu/mana-chat-bot-go/internal/util"
	"github.com/kapu/mana-chat-bot-go/pkg/errors"
)

const (
	TransportTwitch  = "twitch"
	TransportGateway = "gateway"

	PointsPostgres = "postgres"
	PointsMemory   = "memory"
)

type Config struct {
	Transport string
	Twitch    TwitchConfig
	Gateway   GatewayConfig
	Points    PointsConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Modules   ModulesConfig
	Logging   LoggingConfig
}

type TwitchConfig struct {
	Username   string
	OAuthToken string
	Channels   []string
}

type GatewayConfig struct {
	BaseURL string
	WSURL   string
}

type PointsConfig struct {
	Backend string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type ModulesConfig struct {
	Persist bool
	Default []string
}

type LoggingConfig struct {
	Level         string
	Dir           string
	CommandsDebug bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Transport: getEnv("TRANSPORT", TransportTwitch),
		Twitch: TwitchConfig{
			Username:   getEnv("TWITCH_USERNAME", ""),
			OAuthToken: getEnv("TWITCH_OAUTH_TOKEN", ""),
			Channels:   util.ParseCommaSeparated(getEnv("TWITCH_CHANNELS", "")),
		},
		Gateway: GatewayConfig{
			BaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("GATEWAY_WS_URL", "ws://localhost:3000/ws"),
		},
		Points: PointsConfig{
			Backend: getEnv("POINTS_BACKEND", PointsPostgres),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "chatbot"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "chatbot"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Modules: ModulesConfig{
			Persist: getEnvBool("MODULE_PERSISTENCE", true),
			Default: util.ParseCommaSeparated(getEnv("DEFAULT_MODULES", "")),
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Dir:           getEnv("LOG_DIR", "logs"),
			CommandsDebug: getEnvBool("LOG_COMMANDS_DEBUG", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Transport {
	case TransportTwitch:
		if c.Twitch.Username == "" {
			return errors.NewValidationError("TWITCH_USERNAME is required", "TWITCH_USERNAME", c.Twitch.Username)
		}
		if c.Twitch.OAuthToken == "" {
			return errors.NewValidationError("TWITCH_OAUTH_TOKEN is required", "TWITCH_OAUTH_TOKEN", "")
		}
		if len(c.Twitch.Channels) == 0 {
			return errors.NewValidationError("TWITCH_CHANNELS is required", "TWITCH_CHANNELS", c.Twitch.Channels)
		}
	case TransportGateway:
		if c.Gateway.BaseURL == "" {
			return errors.NewValidationError("GATEWAY_BASE_URL is required", "GATEWAY_BASE_URL", c.Gateway.BaseURL)
		}
		if c.Gateway.WSURL == "" {
			return errors.NewValidationError("GATEWAY_WS_URL is required", "GATEWAY_WS_URL", c.Gateway.WSURL)
		}
	default:
		return errors.NewValidationError("TRANSPORT must be twitch or gateway", "TRANSPORT", c.Transport)
	}

	switch c.Points.Backend {
	case PointsPostgres, PointsMemory:
	default:
		return errors.NewValidationError("POINTS_BACKEND must be postgres or memory", "POINTS_BACKEND", c.Points.Backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
