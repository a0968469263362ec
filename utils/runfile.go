package utils

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveConfig writes the run configuration as JSON.
func SaveConfig(filepath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadConfig reads a JSON run configuration. Fields missing from the file
// keep their DefaultConfig values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}
