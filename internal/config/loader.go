package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config file locations.
const (
	GlobalConfigDir   = "hiit" // under $XDG_CONFIG_HOME or ~/.config
	GlobalConfigFile  = "config.yaml"
	ProjectConfigDir  = ".hiit" // in the working directory
	ProjectConfigFile = "config.yaml"
)

// configKey is the viper key holding an explicit config file path, set by
// --config or HIIT_CONFIG.
const configKey = "config"

// source is one config file in the layering order.
type source struct {
	path     string
	required bool
}

// LoadConfig loads configuration from files and viper settings.
// Precedence (later overrides earlier):
//  1. Default() values
//  2. ~/.config/hiit/config.yaml (global)
//  3. .hiit/config.yaml (project)
//  4. the file named by --config / HIIT_CONFIG, which must exist
//  5. Environment variables (HIIT_*)
//
// Missing global and project files are ignored. The result is normalized,
// see Config.normalize.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := Default()

	defaultMap, err := structToMap(cfg)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(defaultMap); err != nil {
		return nil, err
	}

	for _, src := range sources(v) {
		if err := mergeFile(v, src); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg, viperDecodeHook()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// sources lists the config files to merge, lowest priority first.
func sources(v *viper.Viper) []source {
	var out []source
	if path := globalConfigPath(); path != "" {
		out = append(out, source{path: path})
	}
	if path := projectConfigPath(); path != "" {
		out = append(out, source{path: path})
	}
	if path := v.GetString(configKey); path != "" {
		out = append(out, source{path: path, required: true})
	}
	return out
}

// globalConfigPath returns the global config file path if it exists.
func globalConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}

	path := filepath.Join(configDir, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// projectConfigPath returns the project config file path if it exists.
func projectConfigPath() string {
	path := filepath.Join(ProjectConfigDir, ProjectConfigFile)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// mergeFile reads a YAML file into v. A missing optional file is skipped.
func mergeFile(v *viper.Viper, src source) error {
	file, err := os.Open(src.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !src.required {
			return nil
		}
		return fmt.Errorf("open config %s: %w", src.path, err)
	}
	defer func() { _ = file.Close() }()

	fileViper := viper.New()
	fileViper.SetConfigType("yaml")
	if err := fileViper.ReadConfig(file); err != nil {
		return fmt.Errorf("parse config %s: %w", src.path, err)
	}

	return v.MergeConfigMap(fileViper.AllSettings())
}

// normalize repairs values a config file can get wrong without making the
// session invalid: non-positive intervals fall back to the defaults, text
// selectors are trimmed and user presets without an id are dropped.
func (c *Config) normalize() {
	def := Default()

	if c.Timer.Tick <= 0 {
		c.Timer.Tick = def.Timer.Tick
	}
	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = def.Notify.Timeout
	}
	c.Timer.Preset = strings.TrimSpace(c.Timer.Preset)
	c.Timer.Describe = strings.TrimSpace(c.Timer.Describe)
	c.Notify.Command = strings.TrimSpace(c.Notify.Command)

	presets := c.UserPresets[:0]
	for _, p := range c.UserPresets {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			continue
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		presets = append(presets, p)
	}
	c.UserPresets = presets
}

// viperDecodeHook parses durations such as "250ms" and "1m30s".
func viperDecodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// structToMap flattens cfg into the map form viper merges, with durations
// as strings so a file can override them.
func structToMap(cfg *Config) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "mapstructure",
		Result:     &result,
		DecodeHook: durationToStringHook(),
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	return result, nil
}

func durationToStringHook() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		return data.(time.Duration).String(), nil
	}
}
