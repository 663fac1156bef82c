package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// LedgerConfig stores common ledger-gateway configuration across all ledger
// types. Chain-specific settings are loaded separately by the client factory.
type LedgerConfig struct {
	// LedgerType selects the gateway implementation: "ethereum" or "mock".
	LedgerType string `yaml:"ledger_type"`

	// TimeoutSeconds bounds each individual gateway call. A timeout during a
	// write means the outcome is unknown, not rejected.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// ChainSpecific is populated by the factory based on LedgerType.
	ChainSpecific any `yaml:"-"`
}

// SetDefaults sets reasonable default values for ledger configuration.
func (c *LedgerConfig) SetDefaults() {
	if c.LedgerType == "" {
		c.LedgerType = "ethereum"
		fmt.Printf("Warning: ledger.ledger_type not set, defaulting to %s\n", c.LedgerType)
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 15
		fmt.Printf("Warning: ledger.timeout_seconds not set or invalid, defaulting to %d\n", c.TimeoutSeconds)
	}
}

// LoadLedgerConfig loads the common ledger configuration from a YAML file.
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path of config file: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", absPath, err)
	}

	var cfg LedgerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}
	cfg.SetDefaults()

	return &cfg, nil
}
