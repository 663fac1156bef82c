package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ServiceConfig defines all configuration for the chaintrack service.
type ServiceConfig struct {
	// Identity is the connected account address used to scope pollers when
	// running against the mock ledger. With the ethereum ledger the identity
	// is derived from the wallet key and this field is ignored.
	Identity string `yaml:"identity"`

	// Database configuration for the submission-attempt journal.
	Database DatabaseConfig `yaml:"database"`

	// Kafka producer configuration for terminal outcome events.
	KafkaProducer KafkaProducerConfig `yaml:"kafka_producer"`

	// Synchronization engine polling cadences.
	Sync SyncConfig `yaml:"sync"`

	// HTTP presentation boundary.
	API APIConfig `yaml:"api"`

	// Path to the common ledger client configuration file.
	LedgerClientConfigPath string `yaml:"ledger_client_config_path"`
}

// LoadServiceConfig loads the service configuration from a YAML file path.
func LoadServiceConfig(path string) (*ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file: %w", err)
	}

	cfg.Database.SetDefaults()
	cfg.KafkaProducer.SetDefaults()
	cfg.Sync.SetDefaults()
	cfg.API.SetDefaults()

	if cfg.LedgerClientConfigPath == "" {
		cfg.LedgerClientConfigPath = "./config/ledger.defaults.yml"
		fmt.Printf("Warning: ledger_client_config_path not set, defaulting to %s\n", cfg.LedgerClientConfigPath)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, fmt.Errorf("database configuration error: %w", err)
	}

	return &cfg, nil
}
