package deduplication

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigFile represents the structure of a tenderlink.yaml file.
// Pointer fields distinguish "not set" from an explicit zero.
type ConfigFile struct {
	Threshold    *float64     `yaml:"threshold"`
	Weights      *WeightsFile `yaml:"weights"`
	Workers      *int         `yaml:"workers"`
	MaxBatchSize *int         `yaml:"max_batch_size"`
	Verbose      *bool        `yaml:"verbose"`
}

// WeightsFile holds per-attribute weight overrides.
type WeightsFile struct {
	Title *float64 `yaml:"title"`
	Buyer *float64 `yaml:"buyer"`
	CPV   *float64 `yaml:"cpv"`
	Value *float64 `yaml:"value"`
}

// LoadConfigFile loads configuration from a YAML file at path.
// If the file doesn't exist the default configuration is returned.
func LoadConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML config data on top of DefaultConfig and validates
// the result.
func ParseConfig(data []byte) (Config, error) {
	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := cf.Apply(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file: %w", err)
	}
	return cfg, nil
}

// Apply overrides the fields of cfg that are set in the file.
func (cf *ConfigFile) Apply(cfg Config) Config {
	if cf.Threshold != nil {
		cfg.Threshold = *cf.Threshold
	}
	if w := cf.Weights; w != nil {
		if w.Title != nil {
			cfg.Weights.Title = *w.Title
		}
		if w.Buyer != nil {
			cfg.Weights.Buyer = *w.Buyer
		}
		if w.CPV != nil {
			cfg.Weights.CPV = *w.CPV
		}
		if w.Value != nil {
			cfg.Weights.Value = *w.Value
		}
	}
	if cf.Workers != nil {
		cfg.Workers = *cf.Workers
	}
	if cf.MaxBatchSize != nil {
		cfg.MaxBatchSize = *cf.MaxBatchSize
	}
	if cf.Verbose != nil {
		cfg.Verbose = *cf.Verbose
	}
	return cfg
}
