// Package config reads application settings from environment variables.
package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	Port          string
	DBUser        string
	DBPass        string
	DBHost        string
	DBPort        string
	DBName        string
	JWTSecret     string
	BotToken      string
	OrderChatID   string
	AllowedOrigin string
}

// Load reads the configuration from the environment. godotenv should have
// been loaded by the caller before this runs.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getenv("PORT"),
		DBUser:        getenv("user"),
		DBPass:        getenv("password"),
		DBHost:        getenv("host"),
		DBPort:        getenv("port"),
		DBName:        getenv("dbname"),
		JWTSecret:     getenv("JWT_SECRET"),
		BotToken:      getenv("TELEGRAM_BOT_TOKEN"),
		OrderChatID:   getenv("TELEGRAM_CHAT_ID"),
		AllowedOrigin: getenv("ALLOWED_ORIGIN"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable not set")
	}
	return cfg, nil
}

// HasBot reports whether the Telegram relay is configured. Without it the
// server still runs; orders are logged instead of relayed.
func (c *Config) HasBot() bool {
	return c.BotToken != "" && c.OrderChatID != ""
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
