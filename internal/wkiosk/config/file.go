package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// DefaultConfigDirs lists the allowed configuration directories in order of preference
	DefaultConfigDirs = []string{
		"/etc/wrale-kiosk",
		"/usr/local/etc/wrale-kiosk",
	}

	allowedExtensions = []string{".yaml", ".yml"}
)

// validateConfigPath ensures the config file path is secure
func validateConfigPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid config path: %w", err)
	}
	cleanPath := filepath.Clean(absPath)

	realPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("error resolving config path: %w", err)
		}
		realPath = cleanPath
	}

	if !slices.Contains(allowedExtensions, strings.ToLower(filepath.Ext(realPath))) {
		return "", fmt.Errorf("config file must have .yaml or .yml extension")
	}

	configRoot := filepath.Dir(realPath)
	validPath := slices.ContainsFunc(DefaultConfigDirs, func(dir string) bool {
		return withinDir(configRoot, dir)
	})

	// The working directory is allowed in development
	if !validPath && os.Getenv("WKIOSK_DEV_MODE") == "1" {
		if pwd, err := os.Getwd(); err == nil {
			validPath = withinDir(configRoot, pwd)
		}
	}

	if !validPath {
		return "", fmt.Errorf("config file must be in an allowed directory (tried: %s)", configRoot)
	}

	return realPath, nil
}

// withinDir reports whether path is dir or below it
func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// safeReadFile reads a file that has been validated by validateConfigPath
func safeReadFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("config path must be a regular file")
	}

	// #nosec G304 -- path has been validated by validateConfigPath
	return os.ReadFile(path)
}

// LoadFile loads configuration from a YAML file. Fields the file leaves
// out keep their defaults, and environment variables override both.
func LoadFile(path string) (*Config, error) {
	validPath, err := validateConfigPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := safeReadFile(validPath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.overlayEnv()

	return cfg, cfg.validate()
}
