// Package config loads canon.toml
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cottand/canon/internal/log"
)

const FileName = "canon.toml"

const DefaultMaxUnifyDepth = 1000

type Config struct {
	Log   LogConfig   `toml:"log"`
	Infer InferConfig `toml:"infer"`
}

type LogConfig struct {
	// Level is one of debug, info, warn or error
	Level string `toml:"level,omitempty"`
	// Sections whose debug and info records are emitted. Prefixes match.
	Sections []string `toml:"sections,omitempty"`
	// Format is auto, text or json
	Format string `toml:"format,omitempty"`
}

type InferConfig struct {
	// MaxUnifyDepth bounds how deep unification recurses into nested types
	MaxUnifyDepth int `toml:"max_unify_depth,omitempty"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "warn",
			Sections: slices.Clone(log.DefaultSections),
			Format:   log.FormatAuto,
		},
		Infer: InferConfig{
			MaxUnifyDepth: DefaultMaxUnifyDepth,
		},
	}
}

// Load reads a canon.toml file. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := config.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return config, nil
}

// Find searches for canon.toml starting from dir and walking up to parent
// directories. It returns the defaults if there is none.
func Find(dir string) (*Config, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", errors.Wrap(err, "resolving directory")
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return nil, "", err
			}
			return config, path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case log.FormatAuto, log.FormatText, log.FormatJSON:
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Infer.MaxUnifyDepth <= 0 {
		return errors.Errorf("max_unify_depth must be positive, got %d", c.Infer.MaxUnifyDepth)
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return l, errors.Wrapf(err, "unknown log level %q", s)
	}
	return l, nil
}

// LogSettings converts the [log] table for log.Configure
func (c *Config) LogSettings() log.Settings {
	l, err := ParseLevel(c.Log.Level)
	if err != nil {
		l = slog.LevelWarn
	}
	return log.Settings{
		Level:    l,
		Sections: c.Log.Sections,
		Format:   c.Log.Format,
	}
}
