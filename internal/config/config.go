package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App     AppConfig
	Discord DiscordConfig
	Redis   RedisConfig
	Logger  LoggerConfig
}

// AppConfig controls the HTTP server.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
}

// DiscordConfig holds credentials and the fixed ids the bot operates on.
type DiscordConfig struct {
	Token          string
	ApplicationID  string
	PublicKey      ed25519.PublicKey
	GuildID        string
	PanelChannelID string
	LogChannelID   string
	OverseerRoleID string
	// CategoryRoleIDs maps category key to its responder role id.
	CategoryRoleIDs map[string]string
	APIBaseURL      string
	RequestTimeout  time.Duration
}

// RedisConfig holds optional snapshot-store connection values. An empty
// Addr disables persistence entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible. The bot token and public key are the only fatal fields.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	publicKey, err := parsePublicKey(os.Getenv("DISCORD_PUBLIC_KEY"))
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "ticket-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("PORT", "3000"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		Discord: DiscordConfig{
			Token:          token,
			ApplicationID:  os.Getenv("DISCORD_APPLICATION_ID"),
			PublicKey:      publicKey,
			GuildID:        os.Getenv("DISCORD_GUILD_ID"),
			PanelChannelID: os.Getenv("TICKET_CHANNEL_ID"),
			LogChannelID:   os.Getenv("LOG_CHANNEL_ID"),
			OverseerRoleID: os.Getenv("OVERSEER_ROLE_ID"),
			CategoryRoleIDs: map[string]string{
				"general":      os.Getenv("GENERAL_SUPPORT_ROLE_ID"),
				"discord":      os.Getenv("DISCORD_SUPPORT_ROLE_ID"),
				"staff_report": os.Getenv("STAFF_REPORT_ROLE_ID"),
				"mr_report":    os.Getenv("HR_ROLE_ID"),
				"alliance":     os.Getenv("ALLIANCE_SUPPORT_ROLE_ID"),
				"executive":    os.Getenv("EXECUTIVE_ROLE_ID"),
				"development":  os.Getenv("DEVELOPER_ROLE_ID"),
				"appeals":      os.Getenv("HR_ROLE_ID"),
			},
			APIBaseURL:     getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),
			RequestTimeout: time.Duration(getEnvAsInt("DISCORD_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func parsePublicKey(raw string) (ed25519.PublicKey, error) {
	if raw == "" {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY is required")
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: %w", err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: expected %d bytes, got %d", ed25519.PublicKeySize, len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
