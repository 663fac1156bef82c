package config

import "fmt"

// APIConfig configures the HTTP presentation boundary.
type APIConfig struct {
	ListenAddress string `yaml:"listen_address"`
	ReadTimeout   string `yaml:"read_timeout"`
	WriteTimeout  string `yaml:"write_timeout"`
}

// SetDefaults sets reasonable default values for the HTTP server.
func (c *APIConfig) SetDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = ":8080"
		fmt.Printf("Warning: api.listen_address not set, defaulting to %s\n", c.ListenAddress)
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "10s"
	}
	if c.WriteTimeout == "" {
		// Submissions wait for ledger inclusion, so writes get a wide bound.
		c.WriteTimeout = "120s"
	}
}
