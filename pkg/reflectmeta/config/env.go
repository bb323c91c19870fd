package config

import (
	"fmt"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig mirrors the environment variables understood by WithEnv.
// Empty values leave the current setting untouched.
type envConfig struct {
	Port          string `env:"REFLECTMETA_PORT" env-description:"HTTP listen port"`
	Environment   string `env:"REFLECTMETA_ENVIRONMENT" env-description:"development, production or testing"`
	LogLevel      string `env:"REFLECTMETA_LOG_LEVEL" env-description:"debug, info, warn or error"`
	EnableMetrics string `env:"REFLECTMETA_ENABLE_METRICS" env-description:"expose /metrics (true/false)"`
}

// WithEnv applies environment variable overrides.
//
//	REFLECTMETA_PORT - Server port (default: "8080")
//	REFLECTMETA_ENVIRONMENT - Runtime environment (default: "development")
//	REFLECTMETA_LOG_LEVEL - Log level (default: "info")
//	REFLECTMETA_ENABLE_METRICS - Expose /metrics (default: true)
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.LogLevel != "" {
			c.LogLevel = env.LogLevel
		}
		if env.EnableMetrics != "" {
			enabled, err := strconv.ParseBool(env.EnableMetrics)
			if err != nil {
				return fmt.Errorf("invalid boolean for REFLECTMETA_ENABLE_METRICS: %w", err)
			}
			c.EnableMetrics = enabled
		}

		return nil
	}
}

// EnvUsage returns a description of the environment variables read by WithEnv
func EnvUsage() (string, error) {
	return cleanenv.GetDescription(&envConfig{}, nil)
}
