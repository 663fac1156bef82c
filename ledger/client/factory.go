package ledger

import (
	"fmt"
	"log"
	"path/filepath"

	"chaintrack/config"
	"chaintrack/ledger/client/ethereum"
)

// LedgerType selects the gateway implementation.
type LedgerType string

const (
	Ethereum LedgerType = "ethereum"
	Mock     LedgerType = "mock"
)

// LoadChainSpecificConfig loads chain-specific configuration based on ledger type.
func LoadChainSpecificConfig(ledgerType string, configDir string) (any, error) {
	switch LedgerType(ledgerType) {
	case Ethereum, "":
		ethereumConfigPath := filepath.Join(configDir, "clients", "ethereum.yml")
		return ethereum.LoadEthereumConfig(ethereumConfigPath)
	case Mock:
		// The mock ledger carries no chain-specific configuration.
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", ledgerType)
	}
}

// New creates a ledger client based on the configuration.
func New(cfg *config.LedgerConfig, logger *log.Logger) (Client, error) {
	switch LedgerType(cfg.LedgerType) {
	case Ethereum, "":
		return ethereum.NewClient(cfg, logger)
	case Mock:
		return NewMockClient(logger), nil
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", cfg.LedgerType)
	}
}

// NewFromFile creates a ledger client from configuration files.
func NewFromFile(configPath string, logger *log.Logger) (Client, error) {
	cfg, err := config.LoadLedgerConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load common ledger config from file '%s': %w", configPath, err)
	}

	configDir := filepath.Dir(configPath)
	chainSpecificCfg, err := LoadChainSpecificConfig(cfg.LedgerType, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain-specific config: %w", err)
	}

	cfg.ChainSpecific = chainSpecificCfg
	return New(cfg, logger)
}
