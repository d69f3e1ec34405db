package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix                   = "PLATEUP"
	defaultDatabasePath         = "plateup.db"
	defaultLogLevel             = "info"
	defaultLogPath              = "plateup.log"
	defaultPlaceholderImageBase = "https://source.unsplash.com/600x400/?"
)

// AppConfig captures runtime configuration for the catalog application.
type AppConfig struct {
	DatabasePath         string
	LogLevel             string
	LogPath              string
	PlaceholderImageBase string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.path", defaultLogPath)
	configViper.SetDefault("image.placeholder_base", defaultPlaceholderImageBase)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		DatabasePath:         configViper.GetString("database.path"),
		LogLevel:             configViper.GetString("log.level"),
		LogPath:              configViper.GetString("log.path"),
		PlaceholderImageBase: configViper.GetString("image.placeholder_base"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.LogPath) == "" {
		return fmt.Errorf("log.path is required")
	}
	if strings.TrimSpace(c.PlaceholderImageBase) == "" {
		return fmt.Errorf("image.placeholder_base is required")
	}
	return nil
}
