// Package config provides configuration management for the Wrale Kiosk CLI.
//
// Context names are case-insensitive; they are stored lowercased.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI configuration
type Config struct {
	// CurrentContext is the name of the active context
	CurrentContext string `mapstructure:"current-context" yaml:"current-context"`
	// Contexts holds the available server contexts
	Contexts map[string]*Context `mapstructure:"contexts" yaml:"contexts"`

	path string
}

// Context pairs a Content Service with the display it feeds
type Context struct {
	// Name is the context identifier
	Name string `mapstructure:"name" yaml:"name"`
	// Server is the Content Service API root
	Server string `mapstructure:"server" yaml:"server"`
	// Display is the local API of a display client
	Display string `mapstructure:"display" yaml:"display,omitempty"`
	// Token is the Content Service bearer token
	Token string `mapstructure:"token" yaml:"token,omitempty"`
	// InsecureSkipVerify disables TLS verification
	InsecureSkipVerify bool `mapstructure:"insecure-skip-verify" yaml:"insecure-skip-verify,omitempty"`
}

// DefaultPath returns WKIOSKCTL_CONFIG or ~/.wkioskctl/config.yaml
func DefaultPath() string {
	if p := os.Getenv("WKIOSKCTL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wkioskctl/config.yaml"
	}
	return filepath.Join(home, ".wkioskctl", "config.yaml")
}

// Load reads the configuration at path. A missing file yields an empty
// configuration that Save will create.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("current-context", "")

	cfg := &Config{path: path}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			delete(cfg.Contexts, name)
			continue
		}
		ctx.Name = name
	}
	return cfg, nil
}

// Path returns the file the configuration is read from and saved to
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	if c.path == "" {
		c.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	v.Set("current-context", c.CurrentContext)
	v.Set("contexts", c.Contexts)

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

// GetCurrentContext returns the active context configuration
func (c *Config) GetCurrentContext() (*Context, error) {
	if c.CurrentContext == "" {
		return nil, fmt.Errorf("no current context set")
	}

	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return nil, fmt.Errorf("current context %q not found", c.CurrentContext)
	}

	return ctx, nil
}

// GetContext returns a context by name
func (c *Config) GetContext(name string) (*Context, bool) {
	ctx, ok := c.Contexts[normalize(name)]
	return ctx, ok
}

// AddContext adds or replaces a context. The first context added
// becomes current.
func (c *Config) AddContext(name string, context *Context) {
	name = normalize(name)
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	context.Name = name
	c.Contexts[name] = context

	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
}

// SetCurrentContext sets the active context
func (c *Config) SetCurrentContext(name string) error {
	name = normalize(name)
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

// RemoveContext removes a context from the configuration
func (c *Config) RemoveContext(name string) error {
	name = normalize(name)
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)

	// If we removed the current context, clear it
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}

	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
