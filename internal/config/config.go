package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AliasStyle controls how default root tags are derived from type names.
type AliasStyle string

const (
	// AliasQualified uses the package-qualified type name, e.g. "models.Car".
	AliasQualified AliasStyle = "qualified"
	// AliasSnake uses the snake_case type name, e.g. "sports_car".
	AliasSnake AliasStyle = "snake"
	// AliasCamel uses the lowerCamelCase type name, e.g. "sportsCar".
	AliasCamel AliasStyle = "camel"
	// AliasLower uses the lower-cased type name, e.g. "sportscar".
	AliasLower AliasStyle = "lower"
)

// Config represents the complete configuration for marshalkit
type Config struct {
	Format    string            `yaml:"format"`
	Aliases   map[string]string `yaml:"aliases"`
	Naming    NamingConfig      `yaml:"naming"`
	Unmarshal UnmarshalConfig   `yaml:"unmarshal"`
	Output    OutputConfig      `yaml:"output"`
	Log       LogConfig         `yaml:"log"`
	Dev       DevConfig         `yaml:"dev"`
}

// NamingConfig controls root tag naming
type NamingConfig struct {
	AliasStyle AliasStyle `yaml:"alias_style"`
}

// UnmarshalConfig controls decoding behaviour
type UnmarshalConfig struct {
	Strict           bool `yaml:"strict"`
	EnvelopeFallback bool `yaml:"envelope_fallback"`
}

// OutputConfig controls output rendering
type OutputConfig struct {
	Indent string `yaml:"indent"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level string `yaml:"level"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// ConfigNames are the file names FindConfigFile looks for, in order.
var ConfigNames = []string{".marshalkit.yml", ".marshalkit.yaml", "marshalkit.yml", "marshalkit.yaml"}

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Format:  "json",
		Aliases: make(map[string]string),
		Naming: NamingConfig{
			AliasStyle: AliasQualified,
		},
		Unmarshal: UnmarshalConfig{
			Strict:           true,
			EnvelopeFallback: true,
		},
		Output: OutputConfig{
			Indent: "  ",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	if cfg.Aliases == nil {
		cfg.Aliases = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(dir string) string {
	for {
		for _, name := range ConfigNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks the config for unknown enumerations and empty aliases.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case "json", "yaml", "yml", "xml":
	default:
		return errors.Errorf("unknown format %q", c.Format)
	}

	switch c.Naming.AliasStyle {
	case AliasQualified, AliasSnake, AliasCamel, AliasLower:
	default:
		return errors.Errorf("unknown alias style %q", c.Naming.AliasStyle)
	}

	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}

	for typeName, alias := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return errors.Errorf("alias for type %q is empty", typeName)
		}
	}

	return nil
}

// LogLevel returns the effective log level; debug mode forces "debug".
func (c *Config) LogLevel() string {
	if c.Dev.Debug {
		return "debug"
	}
	return strings.ToLower(c.Log.Level)
}

// IsAlias reports whether name is one of the configured aliases.
func (c *Config) IsAlias(name string) bool {
	for _, alias := range c.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// ApplyStyle renders a bare type name according to style.
func ApplyStyle(style AliasStyle, qualified, bare string) string {
	switch style {
	case AliasSnake:
		return strcase.ToSnake(bare)
	case AliasCamel:
		return strcase.ToLowerCamel(bare)
	case AliasLower:
		return strings.ToLower(bare)
	default:
		return qualified
	}
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Format != "" {
		merged.Format = override.Format
	}
	if override.Naming.AliasStyle != "" {
		merged.Naming.AliasStyle = override.Naming.AliasStyle
	}
	if override.Log.Level != "" {
		merged.Log.Level = override.Log.Level
	}
	if override.Output.Indent != "" {
		merged.Output.Indent = override.Output.Indent
	}

	merged.Aliases = make(map[string]string, len(base.Aliases)+len(override.Aliases))
	for k, v := range base.Aliases {
		merged.Aliases[k] = v
	}
	for k, v := range override.Aliases {
		merged.Aliases[k] = v
	}

	// Debug can only be switched on from the command line
	merged.Dev.Debug = base.Dev.Debug || override.Dev.Debug

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath, cliLogLevel string, cliDebug bool) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	override := &Config{
		Log: LogConfig{Level: cliLogLevel},
		Dev: DevConfig{Debug: cliDebug},
	}
	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
