package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"retort-go/packages/retort/src/component"
)

// Default values used when neither retort.yaml nor an option sets them.
const (
	DefaultRoot  = "."
	DefaultEntry = "app.yaml"
)

// Config represents the resolved project configuration
type Config struct {
	// Dir is the project directory; Root is relative to it.
	Dir              string
	Root             string
	Entry            string
	ResolveTimeout   time.Duration
	LogLevel         slog.Level
	LenientCloseTags bool
	// Module is the Go module path of the project, empty outside a module.
	Module string
}

// NewConfig creates a new Config with optional parameters
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		Dir:      ".",
		Root:     DefaultRoot,
		Entry:    DefaultEntry,
		LogLevel: slog.LevelInfo,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// ConfigOption is a function that modifies Config
type ConfigOption func(*Config)

// WithRoot sets the component directory
func WithRoot(root string) ConfigOption {
	return func(c *Config) {
		c.Root = root
	}
}

// WithEntry sets the entry component file
func WithEntry(entry string) ConfigOption {
	return func(c *Config) {
		c.Entry = entry
	}
}

// WithResolveTimeout sets the bound on each component resolution
func WithResolveTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ResolveTimeout = d
	}
}

// WithLogLevel sets the minimum log level
func WithLogLevel(level slog.Level) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithLenientCloseTags sets whether closing tag names are checked
func WithLenientCloseTags(lenient bool) ConfigOption {
	return func(c *Config) {
		c.LenientCloseTags = lenient
	}
}

// RootDir returns the component directory.
func (c *Config) RootDir() string {
	if filepath.IsAbs(c.Root) {
		return c.Root
	}
	return filepath.Join(c.Dir, c.Root)
}

// EntryPath returns the path of the entry component file.
func (c *Config) EntryPath() string {
	if filepath.IsAbs(c.Entry) {
		return c.Entry
	}
	return filepath.Join(c.RootDir(), c.Entry)
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// ResolverOptions returns the component loading options for this config.
func (c *Config) ResolverOptions(logger *slog.Logger) []component.ResolverOption {
	return []component.ResolverOption{
		component.WithLogger(logger),
		component.WithLenientCloseTags(c.LenientCloseTags),
		component.WithResolveTimeout(c.ResolveTimeout),
	}
}
