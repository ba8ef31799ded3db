package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Array of replica ids
	ReplicaIds []uint `yaml:"replica_ids"`
	// Lower bound of the randomized election timeout in milliseconds
	ElectionTimeoutMin int `yaml:"election_timeout_min"`
	// Upper bound of the randomized election timeout in milliseconds
	ElectionTimeoutMax int `yaml:"election_timeout_max"`
	// Leader heartbeat timeout in milliseconds
	HeartbeatTimeout int `yaml:"heartbeat_timeout"`
	// Percent probability (0-100) that a single message is dropped
	DropProbability int `yaml:"drop_probability"`
	// Capacity of every replica inbox, messages sent to a full inbox are dropped
	InboxSize int `yaml:"inbox_size"`
}

// DefaultConfig returns a five replica cluster with heartbeat interval ten times
// lower than the minimal election timeout.
func DefaultConfig() Config {
	return Config{
		ReplicaIds:         []uint{1, 2, 3, 4, 5},
		ElectionTimeoutMin: 150,
		ElectionTimeoutMax: 300,
		HeartbeatTimeout:   15,
		DropProbability:    0,
		InboxSize:          1000,
	}
}

// LoadConfig reads YAML config from path, fields missing in the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if len(c.ReplicaIds) == 0 {
		return fmt.Errorf("%w: replica_ids must contain at least one replica", ErrInvalidConfig)
	}

	uniqueIds := make(map[uint]bool)
	for _, id := range c.ReplicaIds {
		if uniqueIds[id] {
			return fmt.Errorf("%w: duplicate replica id: %d", ErrInvalidConfig, id)
		}
		uniqueIds[id] = true
	}

	if c.ElectionTimeoutMin <= 0 {
		return fmt.Errorf("%w: election_timeout_min must be greater than 0", ErrInvalidConfig)
	}

	if c.ElectionTimeoutMax < c.ElectionTimeoutMin {
		return fmt.Errorf("%w: election_timeout_max=%d is lower than election_timeout_min=%d",
			ErrInvalidConfig, c.ElectionTimeoutMax, c.ElectionTimeoutMin)
	}

	if c.HeartbeatTimeout <= 0 {
		return fmt.Errorf("%w: heartbeat_timeout must be greater than 0", ErrInvalidConfig)
	}

	if c.HeartbeatTimeout >= c.ElectionTimeoutMin {
		return fmt.Errorf("%w: heartbeat_timeout=%d must be lower than election_timeout_min=%d",
			ErrInvalidConfig, c.HeartbeatTimeout, c.ElectionTimeoutMin)
	}

	if c.DropProbability < 0 || c.DropProbability > 100 {
		return fmt.Errorf("%w: drop_probability must be within 0-100, got %d", ErrInvalidConfig, c.DropProbability)
	}

	if c.InboxSize <= 0 {
		return fmt.Errorf("%w: inbox_size must be greater than 0", ErrInvalidConfig)
	}

	return nil
}

// MajoritySize returns the number of replicas (including self) forming a strict majority.
func (c *Config) MajoritySize() int {
	return len(c.ReplicaIds)/2 + 1
}
