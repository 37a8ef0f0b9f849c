package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	Port                   string `mapstructure:"PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	GinMode                string `mapstructure:"GIN_MODE"`
	GiantBombAPIKey        string `mapstructure:"GIANT_BOMB_API_KEY"`
	GiantBombURL           string `mapstructure:"GIANT_BOMB_URL"`
	GiantBombRatePerMinute int    `mapstructure:"GIANT_BOMB_RATE_PER_MINUTE"`
}

var defaults = map[string]any{
	"DATABASE_URL":               "",
	"PORT":                       "8080",
	"LOG_LEVEL":                  "info",
	"GIN_MODE":                   "release",
	"GIANT_BOMB_API_KEY":         "",
	"GIANT_BOMB_URL":             "https://www.giantbomb.com/api",
	"GIANT_BOMB_RATE_PER_MINUTE": 60,
}

// Load reads configuration from a .env file in dir, if present, and from
// environment variables, which take precedence.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.GiantBombRatePerMinute <= 0 {
		cfg.GiantBombRatePerMinute = defaults["GIANT_BOMB_RATE_PER_MINUTE"].(int)
	}
	return &cfg, nil
}
