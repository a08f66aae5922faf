// Package config reads runtime settings from INNIT_* environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	StoreKind     string  `env:"INNIT_STORE"`
	DBPath        string  `env:"INNIT_DB_PATH" envDefault:"innit.db"`
	Seed          int64   `env:"INNIT_SEED" envDefault:"1"`
	GenomeLength  int     `env:"INNIT_GENOME_LENGTH" envDefault:"10"`
	HasLTR        bool    `env:"INNIT_HAS_LTR"`
	Stability     float64 `env:"INNIT_STABILITY" envDefault:"0.75"`
	LogLevel      string  `env:"INNIT_LOG_LEVEL" envDefault:"warn"`
	TemplatesPath string  `env:"INNIT_TEMPLATES"`
	ExportsDir    string  `env:"INNIT_EXPORTS_DIR" envDefault:"exports"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Default returns the configuration with every variable unset.
func Default() Config {
	var cfg Config
	// Defaults are literals on the struct tags and cannot fail to parse.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Load returns the environment configuration after validation.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.GenomeLength < 0 {
		return fmt.Errorf("genome length must be >= 0, got %d", c.GenomeLength)
	}
	if c.Stability < 0 || c.Stability > 1 {
		return fmt.Errorf("stability must be in [0,1], got %g", c.Stability)
	}
	switch c.StoreKind {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported store kind: %s", c.StoreKind)
	}
	return nil
}
