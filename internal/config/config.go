package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Log     LogConfig     `mapstructure:"log"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// APIConfig holds the remote catalog API configuration
type APIConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	ListPath    string `mapstructure:"list_path"`
	SpeciesPath string `mapstructure:"species_path"`
	Timeout     int    `mapstructure:"timeout"` // Seconds
	UserAgent   string `mapstructure:"user_agent"`
	Proxy       string `mapstructure:"proxy"`
}

// CatalogConfig holds pagination and presentation settings
type CatalogConfig struct {
	PageSize       int    `mapstructure:"page_size"`
	KnownTotal     int    `mapstructure:"known_total"` // Estimated catalog size, used for total pages
	FlavorLanguage string `mapstructure:"flavor_language"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// RedisConfig holds the optional state change feed connection details
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	Database     int    `mapstructure:"database"`
	StreamPrefix string `mapstructure:"stream_prefix"`
	MaxLen       int64  `mapstructure:"max_len"`
}

// Load loads configuration from an optional YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
			// Environment only
		case path != "" && errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("config file %s not found", path)
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that would otherwise break pagination or requests
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be at least 1, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.KnownTotal < 1 {
		return fmt.Errorf("catalog.known_total must be at least 1, got %d", c.Catalog.KnownTotal)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %d", c.API.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("api.list_path", "pokemon")
	v.SetDefault("api.species_path", "pokemon-species")
	v.SetDefault("api.timeout", 30)
	v.SetDefault("api.user_agent", "pokedex-catalog/1.0")
	v.SetDefault("api.proxy", "")

	v.SetDefault("catalog.page_size", 20)
	v.SetDefault("catalog.known_total", 1300)
	v.SetDefault("catalog.flavor_language", "en")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.stream_prefix", "catalog:stream:")
	v.SetDefault("redis.max_len", 1000)
}
