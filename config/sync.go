package config

import "fmt"

// SyncConfig defines the cadence of the synchronization engine's pollers.
// Each collection has its own independently configurable interval; a slow or
// failing poller never affects another collection's refresh.
type SyncConfig struct {
	PartyPollInterval   string `yaml:"party_poll_interval"`   // full party list refresh
	ProductPollInterval string `yaml:"product_poll_interval"` // products of the connected identity
	HistoryPollInterval string `yaml:"history_poll_interval"` // transaction history of watched products
}

// SetDefaults sets the default polling cadences.
func (c *SyncConfig) SetDefaults() {
	if c.PartyPollInterval == "" {
		c.PartyPollInterval = "1s"
		fmt.Printf("Warning: sync.party_poll_interval not set, defaulting to %s\n", c.PartyPollInterval)
	}
	if c.ProductPollInterval == "" {
		c.ProductPollInterval = "250ms"
		fmt.Printf("Warning: sync.product_poll_interval not set, defaulting to %s\n", c.ProductPollInterval)
	}
	if c.HistoryPollInterval == "" {
		c.HistoryPollInterval = "3s"
		fmt.Printf("Warning: sync.history_poll_interval not set, defaulting to %s\n", c.HistoryPollInterval)
	}
}
