// Package config loads server configuration from environment variables and
// an optional .env file. Command-line flags override what is loaded here.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Addr      string
	DBPath    string
	LogPath   string
	AdminUser string
}

// Load reads configuration from the environment and an optional .env file in
// the working directory. Missing keys fall back to defaults.
func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")

	viper.SetDefault("QUOTEDESK_ADDR", ":8080")
	viper.SetDefault("QUOTEDESK_DB", "quotedesk.sqlite3")
	viper.SetDefault("QUOTEDESK_LOG", "")
	viper.SetDefault("QUOTEDESK_ADMIN_USER", "Admin")

	viper.AutomaticEnv()

	// The .env file is optional; env vars alone are fine.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Addr:      getEnvOrViper("QUOTEDESK_ADDR", ":8080"),
		DBPath:    getEnvOrViper("QUOTEDESK_DB", "quotedesk.sqlite3"),
		LogPath:   getEnvOrViper("QUOTEDESK_LOG", ""),
		AdminUser: getEnvOrViper("QUOTEDESK_ADMIN_USER", "Admin"),
	}

	if cfg.AdminUser == "" {
		return nil, fmt.Errorf("QUOTEDESK_ADMIN_USER must not be empty")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
