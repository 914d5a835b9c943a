// Package config loads formstate settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config holds application configuration.
type Config struct {
	Specs SpecsConfig `mapstructure:"specs"`
	Store StoreConfig `mapstructure:"store"`
	I18n  I18nConfig  `mapstructure:"i18n"`
	Log   LogConfig   `mapstructure:"log"`
	Form  FormConfig  `mapstructure:"form"`
}

// SpecsConfig locates the CUE entity definitions.
type SpecsConfig struct {
	Dir string `mapstructure:"dir"`
}

// StoreConfig holds sqlite settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// I18nConfig selects the message catalog.
type I18nConfig struct {
	Locale   string `mapstructure:"locale"`
	Messages string `mapstructure:"messages"` // optional YAML file of extra messages
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// FormConfig holds defaults for form sessions.
type FormConfig struct {
	ForceErrorDisplay bool `mapstructure:"force_error_display"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// FORMSTATE_, so FORMSTATE_STORE_PATH sets store.path. The file is taken
// from FORMSTATE_CONFIG when set, otherwise $HOME/.config/formstate/config.yaml
// if it exists.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("specs.dir", "specs")
	v.SetDefault("store.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "formstate", "formstate.db"))
	v.SetDefault("i18n.locale", "en")
	v.SetDefault("i18n.messages", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("form.force_error_display", false)

	v.SetConfigType("yaml")

	cfgPath := os.Getenv("FORMSTATE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "formstate"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FORMSTATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; an explicit one must exist and parse.
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := c.Language(); err != nil {
		return Config{}, err
	}
	if _, err := c.LogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Language parses i18n.locale as a BCP 47 tag.
func (c Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.I18n.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("i18n.locale %q: %w", c.I18n.Locale, err)
	}
	return tag, nil
}

// LogLevel parses log.level (debug, info, warn, error).
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
