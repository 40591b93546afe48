package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Resolve.
const FileName = "retort.yaml"

// SupportedMajor is the only retort.yaml major version understood.
const SupportedMajor = "v1"

// File represents the optional retort.yaml configuration.
type File struct {
	Version          string `yaml:"version,omitempty"`
	Root             string `yaml:"root,omitempty"`
	Entry            string `yaml:"entry,omitempty"`
	ResolveTimeout   string `yaml:"resolve_timeout,omitempty"`
	LogLevel         string `yaml:"log_level,omitempty"`
	LenientCloseTags *bool  `yaml:"lenient_close_tags,omitempty"`
}

// LoadOptional reads retort.yaml if present.
func LoadOptional(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &file, nil
}

// Resolve loads retort.yaml (if present) from dir and resolves defaults.
// Options are applied last and win over the file.
func Resolve(dir string, opts ...ConfigOption) (*Config, error) {
	file, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	if err := validateVersion(file.Version); err != nil {
		return nil, err
	}

	var fileOpts []ConfigOption
	if root := strings.TrimSpace(file.Root); root != "" {
		fileOpts = append(fileOpts, WithRoot(root))
	}
	if entry := strings.TrimSpace(file.Entry); entry != "" {
		fileOpts = append(fileOpts, WithEntry(entry))
	}
	if s := strings.TrimSpace(file.ResolveTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid resolve_timeout %q in %s", s, FileName)
		}
		fileOpts = append(fileOpts, WithResolveTimeout(d))
	}
	if s := strings.TrimSpace(file.LogLevel); s != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("invalid log_level %q in %s: %w", s, FileName, err)
		}
		fileOpts = append(fileOpts, WithLogLevel(level))
	}
	if file.LenientCloseTags != nil {
		fileOpts = append(fileOpts, WithLenientCloseTags(*file.LenientCloseTags))
	}

	config := NewConfig(append(fileOpts, opts...)...)
	config.Dir = dir
	config.Module = modulePath(dir)
	return config, nil
}

func validateVersion(version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid version %q in %s: not a semantic version", version, FileName)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("unsupported version %q in %s: expected %s.x", version, FileName, SupportedMajor)
	}
	return nil
}

// modulePath returns the module path declared by dir/go.mod, if any.
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
