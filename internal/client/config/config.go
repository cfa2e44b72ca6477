// Package config loads settings for the authgate CLI.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the CLI.
//
// ServerURL is the base URL of the gateway; Timeout bounds each HTTP call.
type Config struct {
	ServerURL string        `env:"AUTHGATE_URL"`
	Timeout   time.Duration `env:"AUTHGATE_TIMEOUT"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file given with -c/-config,
// then the environment, then flags. Later sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		return nil, errors.New("server url is required")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	return cfg, nil
}
