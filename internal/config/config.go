// Package config loads the pagebuilder tool configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/go-drift/pagebuilder/pkg/fonts"
	"github.com/go-drift/pagebuilder/pkg/view"
)

// DefaultConfigPath is read when no path is given.
const DefaultConfigPath = "pagebuilder.yaml"

// EnvPrefix prefixes environment overrides, e.g. PAGEBUILDER_FONTS_DIR.
const EnvPrefix = "PAGEBUILDER"

// Config is the top-level configuration.
type Config struct {
	WrapperSelector    string      `mapstructure:"wrapper_selector" yaml:"wrapper_selector"`
	ElementClassPrefix string      `mapstructure:"element_class_prefix" yaml:"element_class_prefix"`
	SchemaDir          string      `mapstructure:"schema_dir" yaml:"schema_dir"`
	Fonts              FontsConfig `mapstructure:"fonts" yaml:"fonts"`
}

// FontsConfig controls font asset resolution.
type FontsConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// Dir holds local .ttf and .otf files registered at startup.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WrapperSelector:    view.DefaultWrapper,
		ElementClassPrefix: view.DefaultClassPrefix,
		Fonts: FontsConfig{
			BaseURL: fonts.DefaultBaseURL,
		},
	}
}

// Validate checks values that would produce broken selectors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.WrapperSelector) == "" {
		return fmt.Errorf("wrapper_selector must not be empty")
	}
	if strings.ContainsAny(c.WrapperSelector, "{};") {
		return fmt.Errorf("wrapper_selector %q contains invalid characters", c.WrapperSelector)
	}
	if c.ElementClassPrefix == "" || strings.ContainsAny(c.ElementClassPrefix, " .#{};") {
		return fmt.Errorf("element_class_prefix %q is not a valid class prefix", c.ElementClassPrefix)
	}
	return nil
}
