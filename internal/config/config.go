package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	CacheDir string `koanf:"cache_dir"` // override for the audio cache directory

	// Backend API (enables pending-action delivery when configured)
	API APIConfig `koanf:"api"`

	// Download behavior
	Downloads DownloadsConfig `koanf:"downloads"`

	// Playback settings
	Playback PlaybackConfig `koanf:"playback"`
}

// APIConfig holds backend API configuration.
type APIConfig struct {
	URL string `koanf:"url"` // e.g., "https://hymnal.example.com"
}

// DownloadsConfig holds download-related configuration.
type DownloadsConfig struct {
	MaxConcurrent int `koanf:"max_concurrent"` // parallel fetches (1-8, default: 3)
}

// PlaybackConfig holds playback-related configuration.
type PlaybackConfig struct {
	Volume float64 `koanf:"volume"` // initial volume (0.0-1.0, default: 1.0)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in cache_dir
	if cfg.CacheDir != "" {
		cfg.CacheDir = expandPath(cfg.CacheDir)
	}

	// Normalize API URL (remove trailing slash)
	cfg.API.URL = strings.TrimSuffix(cfg.API.URL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/hymnbox/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hymnbox", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasAPIConfig returns true if the backend API is configured.
func (c *Config) HasAPIConfig() bool {
	return c.API.URL != ""
}

// GetDownloadsConfig returns the downloads configuration with defaults applied.
func (c *Config) GetDownloadsConfig() DownloadsConfig {
	cfg := c.Downloads

	if cfg.MaxConcurrent <= 0 || cfg.MaxConcurrent > 8 {
		cfg.MaxConcurrent = 3
	}

	return cfg
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.Volume <= 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}

	return cfg
}
