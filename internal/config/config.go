// Package config persists the e-stop controller configuration to a JSON file.
//
// Loading is deliberately forgiving: a missing file, malformed JSON, or an
// unknown mode string falls back to safe defaults instead of failing, because
// the controller must always be able to construct and drive the output.
// Saving happens immediately after every mutating operation so a crash never
// leaves the file contradicting the level already driven.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweeney/estop-controller/internal/gpio"
	"github.com/sweeney/estop-controller/internal/polarity"
)

// Config is the persisted controller configuration.
type Config struct {
	Mode           polarity.Mode `json:"mode"`
	ManualOverride bool          `json:"manual_override"`
	GPIOPin        int           `json:"gpio_pin"`
}

// Default returns the fail-safe defaults: Normally Closed wiring, no
// override, default pin.
func Default() Config {
	return Config{
		Mode:           polarity.ModeNC,
		ManualOverride: false,
		GPIOPin:        gpio.DefaultPin,
	}
}

// DefaultPath returns the per-user config location, ~/.estop_config.json.
// Falls back to the working directory if the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".estop_config.json"
	}
	return filepath.Join(home, ".estop_config.json")
}

// fileConfig mirrors Config with the mode as a raw string so an unknown
// value can be rejected per-field instead of failing the whole load.
type fileConfig struct {
	Mode           *string `json:"mode"`
	ManualOverride *bool   `json:"manual_override"`
	GPIOPin        *int    `json:"gpio_pin"`
}

// Load reads the config at path. It always returns a usable Config: any
// field that is missing or invalid holds its default. The returned error is
// diagnostic only — callers log it and proceed.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	var badMode error
	if fc.Mode != nil {
		mode, ok := polarity.ParseMode(*fc.Mode)
		if ok {
			cfg.Mode = mode
		} else {
			badMode = fmt.Errorf("unknown mode %q, using %q", *fc.Mode, cfg.Mode)
		}
	}
	if fc.ManualOverride != nil {
		cfg.ManualOverride = *fc.ManualOverride
	}
	if fc.GPIOPin != nil {
		cfg.GPIOPin = *fc.GPIOPin
	}

	return cfg, badMode
}

// Save writes the config as indented JSON. The write goes through a temp
// file and rename so a crash mid-write cannot corrupt the previous config.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
