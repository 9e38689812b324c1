// Package config centralises configuration parsing for the signup service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the signup service.
type Config struct {
	HTTPAddress     string        `env:"SIGNUP_HTTP_ADDRESS" envDefault:":8080"`
	CatalogPath     string        `env:"SIGNUP_CATALOG_PATH"` // Empty selects the embedded catalog.
	LogLevel        string        `env:"SIGNUP_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"SIGNUP_LOG_FORMAT" envDefault:"json"`
	CORSOrigin      string        `env:"SIGNUP_CORS_ORIGIN" envDefault:"http://localhost:5173"`
	ReadTimeout     time.Duration `env:"SIGNUP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SIGNUP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"SIGNUP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SIGNUP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	ServiceVersion  string        `env:"SIGNUP_SERVICE_VERSION" envDefault:"dev"`
	OTelEndpoint    string        `env:"SIGNUP_OTEL_ENDPOINT"`
	OTelEnabled     bool          `env:"SIGNUP_OTEL_ENABLED" envDefault:"true"`
}

// Load reads an optional .env file from the working directory, then parses
// environment variables into Config, applying defaults for local dev.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped;
// variables already present in the environment win over file values.
func LoadFiles(paths ...string) (Config, error) {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
