package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config holds the shell's startup settings. Every field is optional in
// the YAML file; zero values are filled with defaults relative to the
// user's home directory.
type Config struct {
	Prompt      string   `yaml:"prompt"`
	HomeDir     string   `yaml:"home_dir"`
	HistoryFile string   `yaml:"history_file"`
	HistoryDB   string   `yaml:"history_db"`
	MaxJobs     int      `yaml:"max_jobs"`
	Plugins     []string `yaml:"plugins"`
}

// Load reads the YAML config at file. A missing file is not an error:
// the defaults are returned.
func Load(file string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(file)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.HomeDir == "" {
		cfg.HomeDir, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "gosh> "
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = filepath.Join(cfg.HomeDir, ".gosh_history")
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(cfg.HomeDir, ".gosh_history.db")
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 16
	}
	return cfg, nil
}
