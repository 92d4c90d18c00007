// Package config loads CLI configuration from an optional YAML file, a .env
// file and PAYOUTS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmagro/sidecar-payouts/internal/payouts"
	"github.com/dmagro/sidecar-payouts/internal/sidecar"
)

// DefaultPath is read when --config is not given and the file exists.
const DefaultPath = "payouts.yaml"

// Config is the root configuration structure.
type Config struct {
	Sidecar Sidecar `yaml:"sidecar" envPrefix:"SIDECAR_"`
	Payouts Payouts `yaml:"payouts"`
	History History `yaml:"history" envPrefix:"HISTORY_"`
	Reports Reports `yaml:"reports" envPrefix:"REPORTS_"`
	Log     Log     `yaml:"log" envPrefix:"LOG_"`
}

// Sidecar locates the upstream REST service.
type Sidecar struct {
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"` // 0 = http.Client default
}

// Payouts controls aggregation and display.
type Payouts struct {
	Policy      string `yaml:"policy" env:"POLICY"`           // strict | lenient
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY"` // accounts in flight
	Decimals    int32  `yaml:"decimals" env:"DECIMALS"`       // planck -> token shift, 0 disables
	Symbol      string `yaml:"symbol" env:"SYMBOL"`
}

// History is the local sqlite log of runs.
type History struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// Reports is where --report writes JSON files.
type Reports struct {
	Dir string `yaml:"dir" env:"DIR"`
}

type Log struct {
	Level         string `yaml:"level" env:"LEVEL"`
	HumanFriendly bool   `yaml:"human_friendly" env:"HUMAN_FRIENDLY"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Sidecar: Sidecar{URL: sidecar.DefaultURL},
		Payouts: Payouts{Policy: payouts.PolicyStrict.String(), Concurrency: 1},
		History: History{Path: ".payouts/history.db"},
		Reports: Reports{Dir: "reports"},
		Log:     Log{Level: "warn", HumanFriendly: true},
	}
}

// Policy returns the parsed aggregation policy. Validate has already
// rejected unknown values.
func (c *Config) Policy() payouts.Policy {
	p, _ := payouts.ParsePolicy(c.Payouts.Policy)
	return p
}

// Validate checks every field the commands rely on.
func (c *Config) Validate() error {
	if c.Sidecar.URL == "" {
		return errors.New("sidecar.url is required")
	}
	u, err := url.Parse(c.Sidecar.URL)
	if err != nil {
		return fmt.Errorf("sidecar.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("sidecar.url: invalid scheme %q (expected http or https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("sidecar.url: missing host")
	}
	if c.Sidecar.Timeout < 0 {
		return errors.New("sidecar.timeout must be >= 0")
	}
	if _, err := payouts.ParsePolicy(c.Payouts.Policy); err != nil {
		return fmt.Errorf("payouts.policy: %w", err)
	}
	if c.Payouts.Concurrency < 1 {
		return errors.New("payouts.concurrency must be >= 1")
	}
	if c.Payouts.Decimals < 0 || c.Payouts.Decimals > 30 {
		return fmt.Errorf("payouts.decimals must be between 0 and 30, got %d", c.Payouts.Decimals)
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then PAYOUTS_* environment variables. A .env file in
// the working directory is loaded first and never overrides variables that
// are already set.
//
// The result is not validated. Callers apply their own overrides (CLI
// flags) and then call Validate.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// url: ${SIDECAR_URL} style references
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "PAYOUTS_"}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	return cfg, nil
}
