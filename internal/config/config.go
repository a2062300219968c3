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
	HTTPPort    string
	CORSOrigins string

	BackendBaseURL string
	RequestTimeout time.Duration
	SessionTTL     time.Duration

	LogLevel    string
	Environment string
}

func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 10)) * time.Second,
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		Environment:    getEnv("ENVIRONMENT", "production"),
	}

	if cfg.BackendBaseURL == "" {
		fmt.Println("WARNING: BACKEND_BASE_URL is not set!")
	}

	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}
