// Package config loads application configuration from the environment.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. GithubToken may be
// empty: unauthenticated calls still work against public repositories, so
// a missing token is passed through rather than rejected.
type Config struct {
	GithubToken string `mapstructure:"GITHUB_TOKEN"`
	APIBaseURL  string `mapstructure:"GITHUB_API_URL"`
}

// Load reads configuration from a .env file (if present) and environment
// variables. Environment variables take precedence over the file.
func Load() (*Config, error) {
	viper.SetDefault("GITHUB_TOKEN", "")
	viper.SetDefault("GITHUB_API_URL", "")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
