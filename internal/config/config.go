package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Coze       CozeConfig
	Multimodal MultimodalConfig
	Cache      CacheConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TurnQueueTopic     string
}

type DatabaseConfig struct {
	Driver        string // "postgres" or "mysql"
	Connection    string
	SchemaVersion string // "auto", "current" or "legacy"
	QueryTimeout  time.Duration
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type CozeConfig struct {
	BaseURL       string
	APIKey        string
	PhysicalBotID string
	MentalBotID   string
	Timeout       time.Duration
}

type MultimodalConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	UserTTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TurnQueueTopic:     getEnv("TURN_QUEUE_TOPIC", "PERSIST_CHAT_TURN"),
		},
		Database: DatabaseConfig{
			Driver:        getEnv("DB_DRIVER", "postgres"),
			Connection:    getEnv("DB_CONNECTION_STRING", ""),
			SchemaVersion: getEnv("DB_SCHEMA_VERSION", "auto"),
			QueryTimeout:  getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "default_secret"),
			AccessTokenTTL:  getEnvAsDuration("JWT_ACCESS_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Coze: CozeConfig{
			BaseURL:       getEnv("COZE_BASE_URL", "https://api.coze.cn/open_api/v2/chat"),
			APIKey:        getEnv("COZE_API_KEY", ""),
			PhysicalBotID: getEnv("COZE_PHYSICAL_BOT_ID", ""),
			MentalBotID:   getEnv("COZE_MENTAL_BOT_ID", ""),
			Timeout:       getEnvAsDuration("COZE_TIMEOUT", 60*time.Second),
		},
		Multimodal: MultimodalConfig{
			BaseURL: getEnv("MULTIMODAL_BASE_URL", "http://localhost:7860"),
			Timeout: getEnvAsDuration("MULTIMODAL_TIMEOUT", 120*time.Second),
		},
		Cache: CacheConfig{
			UserTTL: time.Duration(getEnvAsInt("USER_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("5s", "24h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
