package ethereum

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// EthereumConfig stores Ethereum-specific configuration.
type EthereumConfig struct {
	// --- Connection ---
	RPCURL  string `yaml:"rpc_url"`
	ChainID int64  `yaml:"chain_id"`

	// --- Signing ---
	// Hex-encoded private key of the connected account. The same account
	// signs contract writes and value transfers.
	PrivateKey string `yaml:"private_key"`

	// --- Contract ---
	ContractAddress string `yaml:"contract_address"`

	// GasLimit for contract writes. 0 lets the node estimate.
	GasLimit uint64 `yaml:"gas_limit"`
}

// Validate checks the fields the client cannot run without.
func (c *EthereumConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("chain_id is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private_key is required")
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("contract_address is required")
	}
	return nil
}

// LoadEthereumConfig loads Ethereum configuration from the specified YAML file path.
func LoadEthereumConfig(path string) (*EthereumConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path of Ethereum config file: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Ethereum config file '%s': %w", absPath, err)
	}

	var cfg EthereumConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse Ethereum YAML config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Ethereum configuration: %w", err)
	}
	return &cfg, nil
}
