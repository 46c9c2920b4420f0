package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EngineFileName is the engine constants file name in config directories.
const EngineFileName = "engine.yaml"

// LoadEngine loads engine constants.
// Search order: customPath -> ~/.cave/configs/engine.yaml -> ./configs/engine.yaml -> embedded default
func LoadEngine(customPath string) (EngineConstants, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return EngineConstants{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := ParseEngine(data)
		if err != nil {
			return EngineConstants{}, fmt.Errorf("config: %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(EngineFileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := ParseEngine(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", EngineFileName)); err == nil {
		if cfg, err := ParseEngine(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := ParseEngine(defaultEngineYAML)
	if err != nil {
		return DefaultEngineConstants(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ParseEngine parses and validates an engine constants document.
// Sections missing from the document take their default values.
func ParseEngine(data []byte) (EngineConstants, error) {
	var cfg EngineConstants
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConstants{}, fmt.Errorf("failed to parse engine constants: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return EngineConstants{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cave", "configs", filename)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
