// Package config loads and saves the emulator settings file and resolves
// the system ROM it names.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/user-none/emzx/emu"
)

const (
	appDirName     = "emzx"
	configFileName = "config.json"
)

// GetConfigPath returns the path of config.json in the user config directory.
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// LoadConfig loads the configuration from path.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted, it returns an error.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	config := DefaultConfig()
	if err := ReadJSON(fs, path, config); err != nil {
		return nil, err
	}

	return migrateConfig(config), nil
}

// SaveConfig saves the configuration to path atomically
func SaveConfig(fs afero.Fs, path string, config *Config) error {
	return AtomicWriteJSON(fs, path, config)
}

// CreateConfigIfMissing writes a default config to path if none exists
func CreateConfigIfMissing(fs afero.Fs, path string) error {
	if _, err := fs.Stat(path); errors.Is(err, os.ErrNotExist) {
		return SaveConfig(fs, path, DefaultConfig())
	}
	return nil
}

// migrateConfig handles any necessary migrations from older config versions
func migrateConfig(config *Config) *Config {
	if config.Version == 0 {
		config.Version = 1
	}

	// Ensure defaults for any missing fields
	if config.Joystick != "cursor" && config.Joystick != "kempston" {
		config.Joystick = "cursor"
	}
	if config.StickyFrames < 0 {
		config.StickyFrames = 1
	}
	if config.Video.Scale <= 0 {
		config.Video.Scale = 2
	}

	return config
}

// LoadSystemROM returns the ROM image named by config.ROMPath, or the
// built-in boot stub when no path is set.
func LoadSystemROM(fs afero.Fs, config *Config) ([]byte, error) {
	if config.ROMPath == "" {
		return emu.BuiltinROM(), nil
	}

	rom, err := afero.ReadFile(fs, config.ROMPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read system ROM: %w", err)
	}
	if len(rom) != emu.ROMSize {
		return nil, fmt.Errorf("%s: %w", config.ROMPath, emu.ErrInvalidROM)
	}
	return rom, nil
}
