package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// config holds CLI defaults loaded from a YAML file. Flags given on the
// command line win over config values.
type config struct {
	// Repo is the repository locator URL, e.g. file:///var/lib/feedstore.
	Repo string `yaml:"repo"`

	// Workers is the import worker pool size.
	Workers int `yaml:"workers"`

	// Atomic publishes every write atomically (file backend).
	Atomic bool `yaml:"atomic"`

	// ChunkSize is the read chunk size in bytes (file backend).
	ChunkSize int `yaml:"chunk_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}
