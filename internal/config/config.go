// package config loads dbsetup configuration from defaults, an optional yaml
// file, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/blockedby/dbsetup/internal/setupscript"
)

// defaults
const (
	DefaultSourceRoot      = "./migrations"
	DefaultOutputPath      = "./migrations/.postgres/setup.sql"
	DefaultFileNamePattern = "up.sql"
	DefaultLogLevel        = "info"
	DefaultEnvFile         = ".env"
)

// Config holds all application configuration.
type Config struct {
	// migrations
	SourceRoot      string `yaml:"source_root" env:"DB_MIGRATIONS_PATH"`
	OutputPath      string `yaml:"output_path" env:"DB_SETUP_SCRIPT_PATH"`
	FileNamePattern string `yaml:"file_name_pattern" env:"DB_FILE_REGEX"`

	// logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile  string `yaml:"log_file" env:"LOG_FILE"`
}

// Sources tells Load where to look besides the defaults.
type Sources struct {
	// ConfigFile - optional yaml file. must exist when set.
	ConfigFile string

	// EnvFile - dotenv file. a missing file is ignored.
	EnvFile string

	// Environ - process environment in os.Environ() form.
	Environ []string
}

// Overrides are explicit command line values. empty fields are ignored.
type Overrides struct {
	SourceRoot      string
	OutputPath      string
	FileNamePattern string
	LogLevel        string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SourceRoot:      DefaultSourceRoot,
		OutputPath:      DefaultOutputPath,
		FileNamePattern: DefaultFileNamePattern,
		LogLevel:        DefaultLogLevel,
	}
}

// Load resolves configuration. Later layers win:
// defaults, yaml file, .env file, process environment.
// Empty environment values are treated as unset.
func Load(src Sources) (*Config, error) {
	cfg := Default()

	if src.ConfigFile != "" {
		if err := cfg.loadFile(src.ConfigFile); err != nil {
			return nil, err
		}
	}

	environ, err := mergeEnv(src.EnvFile, src.Environ)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Apply overwrites fields with non-empty overrides.
func (c *Config) Apply(o Overrides) {
	if o.SourceRoot != "" {
		c.SourceRoot = o.SourceRoot
	}
	if o.OutputPath != "" {
		c.OutputPath = o.OutputPath
	}
	if o.FileNamePattern != "" {
		c.FileNamePattern = o.FileNamePattern
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

// Validate reports every required field that is empty.
func (c *Config) Validate() error {
	var missing []string
	if c.SourceRoot == "" {
		missing = append(missing, "source root")
	}
	if c.OutputPath == "" {
		missing = append(missing, "output path")
	}
	if c.FileNamePattern == "" {
		missing = append(missing, "file name pattern")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required settings are empty: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Script returns the concatenation settings.
func (c *Config) Script() setupscript.Config {
	return setupscript.Config{
		SourceRoot:      c.SourceRoot,
		OutputPath:      c.OutputPath,
		FileNamePattern: c.FileNamePattern,
	}
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// mergeEnv overlays the process environment on top of the dotenv file,
// so real variables always win.
func mergeEnv(envFile string, environ []string) (map[string]string, error) {
	merged := make(map[string]string)

	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range vals {
				merged[k] = v
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	for k, v := range env.ToMap(environ) {
		if v == "" {
			continue
		}
		merged[k] = v
	}
	return merged, nil
}
