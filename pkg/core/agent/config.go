package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// LoadConfig reads the provider mapping from a YAML file. A missing
// file is not an error: the manager falls back to its defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read provider config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse provider config %s: %w", path, err)
	}
	return cfg, nil
}
