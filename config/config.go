// Package config loads the optional pushover-mcp YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigName = "pushover-mcp.yaml"
	homeConfigDir     = ".pushover-mcp"
	homeConfigName    = "config.yaml"
)

// File is the declarative configuration shape. Everything is optional;
// flags override these values and environment variables fill whatever is
// still empty.
type File struct {
	Token string `yaml:"token,omitempty"`
	User  string `yaml:"user,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty"`

	// HealthSchedule is a five-field UTC cron expression for periodic
	// credential verification. Empty disables the checker.
	HealthSchedule string `yaml:"health_schedule,omitempty"`

	// OTLPEndpoint enables trace export when set (host:port or URL).
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
}

// Defaults fill notification fields the caller omitted.
type Defaults struct {
	Title  string `yaml:"title,omitempty"`
	Sound  string `yaml:"sound,omitempty"`
	Device string `yaml:"device,omitempty"`
}

// Discover resolves the config file location with first-match semantics:
// the explicit path when given, then ./pushover-mcp.yaml, then
// ~/.pushover-mcp/config.yaml. The boolean reports whether a file was found.
func Discover(explicitPath string) (string, bool, error) {
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		if _, err := os.Stat(clean); err != nil {
			return "", false, fmt.Errorf("config file %s: %w", clean, err)
		}
		return clean, true, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	projectPath := filepath.Join(cwd, projectConfigName)
	if _, err := os.Stat(projectPath); err == nil {
		return projectPath, true, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	homePath := filepath.Join(homeDir, homeConfigDir, homeConfigName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, true, nil
	}

	return "", false, nil
}

// Load reads and parses one config file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

// LoadDiscovered combines Discover and Load. A missing file is not an
// error; the zero File is returned.
func LoadDiscovered(explicitPath string) (File, error) {
	path, found, err := Discover(explicitPath)
	if err != nil {
		return File{}, err
	}
	if !found {
		return File{}, nil
	}
	return Load(path)
}
