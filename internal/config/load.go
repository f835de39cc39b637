package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from path, falling back to DefaultConfigPath.
// A missing file yields the defaults; environment variables override both.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("wrapper_selector", cfg.WrapperSelector)
	v.SetDefault("element_class_prefix", cfg.ElementClassPrefix)
	v.SetDefault("schema_dir", cfg.SchemaDir)
	v.SetDefault("fonts.base_url", cfg.Fonts.BaseURL)
	v.SetDefault("fonts.dir", cfg.Fonts.Dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.SchemaDir = os.ExpandEnv(cfg.SchemaDir)
	cfg.Fonts.Dir = os.ExpandEnv(cfg.Fonts.Dir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default configuration to path. An existing file
// is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}
	data, err := Marshal(Default())
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
