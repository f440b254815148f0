// Package config loads the daemon configuration from a YAML file with
// environment variable overrides for container deployments.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Scheduler struct {
		Enabled          bool `yaml:"enabled"`
		CatchUp          bool `yaml:"catch_up"`
		StopGraceSeconds int  `yaml:"stop_grace_seconds"`
	} `yaml:"scheduler"`
}

func defaults() Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Database.Path = "habitd.db"
	cfg.Journal.Path = "last_execution.log"
	cfg.Log.Level = "info"
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.CatchUp = true
	cfg.Scheduler.StopGraceSeconds = 60
	return cfg
}

// Load reads the YAML file at path. A missing file is not an error: the
// defaults apply, still subject to environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	if cfg.Scheduler.StopGraceSeconds < 0 {
		return Config{}, fmt.Errorf("invalid stop_grace_seconds %d", cfg.Scheduler.StopGraceSeconds)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HABITD_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("HABITD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("HABITD_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("HABITD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
