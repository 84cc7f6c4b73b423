package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Loads a .env file into the process environment before loadConfig
	// reads it, when one exists next to the binary.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// defaultSecretKey is the placeholder secret the demo ships with.
// The server refuses to start with it unless debug mode is on.
const defaultSecretKey = "canukeepasecret"

// Config holds the demo server settings, read from INTRO_-prefixed
// environment variables layered over the defaults below.
type Config struct {
	Addr            string        `koanf:"addr" validate:"required"`
	Debug           bool          `koanf:"debug"`
	SecretKey       string        `koanf:"secret_key" validate:"required"`
	DocsUI          string        `koanf:"docs_ui" validate:"oneof=rapidoc elements redoc swagger"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	BodyLimit       int64         `koanf:"body_limit" validate:"gt=0"`
	RateLimit       float64       `koanf:"rate_limit" validate:"gt=0"`
	RateBurst       int           `koanf:"rate_burst" validate:"gt=0"`
}

func defaultConfig() Config {
	return Config{
		Addr:            ":8000",
		Debug:           true,
		SecretKey:       defaultSecretKey,
		DocsUI:          "rapidoc",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		RequestTimeout:  25 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		BodyLimit:       8 << 20,
		RateLimit:       50,
		RateBurst:       100,
	}
}

// loadConfig layers INTRO_* environment variables over the defaults and
// validates the result. The env keys are the lowercased koanf tags:
// INTRO_ADDR, INTRO_SECRET_KEY, INTRO_READ_TIMEOUT, and so on.
func loadConfig() (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")
	if err := k.Load(env.Provider("INTRO_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "INTRO_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Debug && cfg.SecretKey == defaultSecretKey {
		return nil, fmt.Errorf("secret_key must be changed when debug is off")
	}

	return &cfg, nil
}
