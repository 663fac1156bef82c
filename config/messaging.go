package config

import "fmt"

// KafkaProducerConfig defines configuration for the outcome-event producer.
// A single "mock://local" broker selects the in-process mock producer.
type KafkaProducerConfig struct {
	Brokers      []string `yaml:"brokers"`       // e.g. ["kafka1:9092", "kafka2:9092"]
	Topic        string   `yaml:"topic"`         // topic for terminal submission outcomes
	BatchSize    int      `yaml:"batch_size"`    // messages per producer batch
	BatchTimeout string   `yaml:"batch_timeout"` // max wait before a partial batch is sent
	RequiredAcks string   `yaml:"required_acks"` // none/one/all
	WriteTimeout string   `yaml:"write_timeout"` // per-write deadline
}

// SetDefaults sets reasonable default values for the producer configuration.
func (c *KafkaProducerConfig) SetDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"mock://local"}
		fmt.Printf("Warning: kafka_producer.brokers not set, defaulting to mock producer\n")
	}
	if c.Topic == "" {
		c.Topic = "chaintrack.outcomes"
		fmt.Printf("Warning: kafka_producer.topic not set, defaulting to %s\n", c.Topic)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "100ms"
	}
	if c.RequiredAcks == "" {
		c.RequiredAcks = "one"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "5s"
	}
}
