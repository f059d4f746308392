package api

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds the HTTP server settings, read from LIBRARY_* environment
// variables.
type Config struct {
	Port    int    `default:"8080"`
	DataDir string `split_words:"true"`
}

// ConfigFromEnv reads the server configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var config Config
	err := envconfig.Process("library", &config)
	return config, err
}
