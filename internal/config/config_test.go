package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, AliasQualified, cfg.Naming.AliasStyle)
	assert.True(t, cfg.Unmarshal.Strict)
	assert.True(t, cfg.Unmarshal.EnvelopeFallback)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Aliases)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
format: yaml
aliases:
  models.Car: car
  models.Person: person
naming:
  alias_style: snake
unmarshal:
  strict: false
  envelope_fallback: false
output:
  indent: "    "
log:
  level: debug
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".marshalkit.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, map[string]string{"models.Car": "car", "models.Person": "person"}, cfg.Aliases)
	assert.Equal(t, AliasSnake, cfg.Naming.AliasStyle)
	assert.False(t, cfg.Unmarshal.Strict)
	assert.False(t, cfg.Unmarshal.EnvelopeFallback)
	assert.Equal(t, "    ", cfg.Output.Indent)
	assert.Equal(t, "debug", cfg.LogLevel())
}

func TestConfig_PartialYAMLKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "marshalkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: warn\n"), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Unmarshal.Strict)
	assert.NotNil(t, cfg.Aliases)
}

func TestConfig_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "invalid yaml", content: "format: [json", errMsg: "failed to parse config file"},
		{name: "unknown format", content: "format: toml", errMsg: `unknown format "toml"`},
		{name: "unknown alias style", content: "naming:\n  alias_style: kebab", errMsg: `unknown alias style "kebab"`},
		{name: "unknown log level", content: "log:\n  level: loud", errMsg: `unknown log level "loud"`},
		{name: "empty alias", content: "aliases:\n  models.Car: \"\"", errMsg: `alias for type "models.Car" is empty`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			_, err := LoadConfig(configPath)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_LoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestFindConfigFrom(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Empty(t, findConfigFrom(nested))

	configPath := filepath.Join(root, "a", ".marshalkit.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("format: json\n"), 0644))

	assert.Equal(t, configPath, findConfigFrom(nested))
}

func TestApplyStyle(t *testing.T) {
	tests := []struct {
		style    AliasStyle
		expected string
	}{
		{AliasQualified, "models.SportsCar"},
		{AliasSnake, "sports_car"},
		{AliasCamel, "sportsCar"},
		{AliasLower, "sportscar"},
	}
	for _, tt := range tests {
		t.Run(string(tt.style), func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyStyle(tt.style, "models.SportsCar", "SportsCar"))
		})
	}
}

func TestConfig_IsAlias(t *testing.T) {
	cfg := NewConfig()
	cfg.Aliases["models.Car"] = "car"

	assert.True(t, cfg.IsAlias("car"))
	assert.False(t, cfg.IsAlias("models.Car"))
}

func TestMergeConfigs(t *testing.T) {
	base := NewConfig()
	base.Aliases["models.Car"] = "car"

	override := &Config{
		Format:  "yaml",
		Aliases: map[string]string{"models.Person": "person"},
		Log:     LogConfig{Level: "error"},
		Dev:     DevConfig{Debug: true},
	}

	merged := MergeConfigs(base, override)

	assert.Equal(t, "yaml", merged.Format)
	assert.Equal(t, "error", merged.Log.Level)
	assert.Equal(t, "debug", merged.LogLevel())
	assert.Equal(t, map[string]string{"models.Car": "car", "models.Person": "person"}, merged.Aliases)
	assert.Equal(t, AliasQualified, merged.Naming.AliasStyle)

	// base is left untouched
	assert.Len(t, base.Aliases, 1)
	assert.Equal(t, "json", base.Format)
}

func TestLoadConfigWithCLI(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".marshalkit.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: warn\naliases:\n  models.Car: car\n"), 0644))

	cfg, err := LoadConfigWithCLI(configPath, "", false)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel())
	assert.Equal(t, "car", cfg.Aliases["models.Car"])

	cfg, err = LoadConfigWithCLI(configPath, "error", false)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel())

	_, err = LoadConfigWithCLI(configPath, "chatty", false)
	require.Error(t, err)
}
