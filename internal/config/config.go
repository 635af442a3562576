package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	SampleRate    int    `json:"sample_rate"`    // Output rate in Hz; assets must match (no resampling)
	AssetDir      string `json:"asset_dir"`      // Directory scanned for track assets
	RingSize      int    `json:"ring_size"`      // Output ring capacity in bytes
	DefaultVolume uint8  `json:"default_volume"` // Startup volume, 0..100
	VolumeStep    int    `json:"volume_step"`    // Percent applied per knob detent
	Debug         bool   `json:"debug"`
	LogFile       string `json:"log_file"`
	KeyBindings   KeyMap `json:"key_bindings"`
}

// KeyMap defines keyboard shortcuts for the front panel
type KeyMap struct {
	PlayPause  string `json:"play_pause"`
	Next       string `json:"next"`
	Previous   string `json:"previous"`
	VolumeUp   string `json:"volume_up"`
	VolumeDown string `json:"volume_down"`
	Quit       string `json:"quit"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		SampleRate:    11025,
		AssetDir:      "assets",
		RingSize:      4 * 4092,
		DefaultVolume: 50,
		VolumeStep:    5,
		Debug:         false,
		LogFile:       "pcmdeck.log",
		KeyBindings: KeyMap{
			PlayPause:  " ",
			Next:       "n",
			Previous:   "p",
			VolumeUp:   "+",
			VolumeDown: "-",
			Quit:       "q",
		},
	}
}

// LoadConfig reads and unmarshals configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return GetDefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// Validate rejects values the audio path cannot run with
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.RingSize <= 0 {
		return fmt.Errorf("ring_size must be positive, got %d", c.RingSize)
	}
	if c.DefaultVolume > 100 {
		return fmt.Errorf("default_volume must be at most 100, got %d", c.DefaultVolume)
	}
	if c.VolumeStep <= 0 {
		return fmt.Errorf("volume_step must be positive, got %d", c.VolumeStep)
	}
	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("PCMDECK_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pcmdeck", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "pcmdeck", "config.json")
}
