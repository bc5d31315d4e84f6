package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Trigger  TriggerConfig
	Auth     AuthConfig
	Export   ExportConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// TriggerConfig controls the inline trigger scanner. Two deployments of the
// original bot used different markers ("%" and "§") and disagreed on the
// minimum token length, so both are configuration rather than constants.
type TriggerConfig struct {
	Prefix       string
	MinTagLength int
	RichOutput   bool
}

type AuthConfig struct {
	ServiceTokenSecret string
	ServiceTokenExpiry time.Duration
	OwnerKeyHash       string
}

type ExportConfig struct {
	S3Enabled       bool
	S3Region        string
	S3Bucket        string
	AccessKeyID     string
	SecretAccessKey string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "tagsy"),
			Password: getEnv("DB_PASSWORD", "tagsy"),
			DBName:   getEnv("DB_NAME", "tagsy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			CacheTTL: parseDuration(getEnv("REDIS_CACHE_TTL", "10m"), 10*time.Minute),
		},
		Trigger: TriggerConfig{
			Prefix:       getEnv("TRIGGER_PREFIX", "%"),
			MinTagLength: parseInt(getEnv("TRIGGER_MIN_TAG_LENGTH", "3"), 3),
			RichOutput:   parseBool(getEnv("TRIGGER_RICH_OUTPUT", "false")),
		},
		Auth: AuthConfig{
			ServiceTokenSecret: getEnv("SERVICE_TOKEN_SECRET", "change-me"),
			ServiceTokenExpiry: parseDuration(getEnv("SERVICE_TOKEN_EXPIRY", "168h"), 168*time.Hour),
			OwnerKeyHash:       getEnv("OWNER_KEY_HASH", ""),
		},
		Export: ExportConfig{
			S3Enabled:       parseBool(getEnv("EXPORT_S3_ENABLED", "false")),
			S3Region:        getEnv("AWS_REGION", "eu-west-3"),
			S3Bucket:        getEnv("EXPORT_S3_BUCKET", "tagsy-exports"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
