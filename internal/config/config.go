// Package config provides types for handling configuration parameters.
package config

import (
	"flag"

	"github.com/caarlos0/env/v6"
)

// Config handles client-related constants and parameters.
type Config struct {
	ClientConfig *ClientConfig
	ServerConfig *ServerConfig
	SecretConfig *SecretConfig
}

// ClientConfig defines gate API credentials and connection parameters and
// overwrites them with environment variables.
type ClientConfig struct {
	APIKey      string `env:"BG_API_KEY"`
	ProjectUUID string `env:"BG_PROJECT_UUID"`
	BaseURL     string `env:"BG_BASE_URL"`
	Debug       bool   `env:"BG_DEBUG"`
}

// ServerConfig defines listening parameters for the reference gate API server.
type ServerConfig struct {
	ServerAddress string `env:"RUN_ADDRESS"`
}

// SecretConfig retrieves the shared symmetric key used for payload and cookie
// ciphering.
type SecretConfig struct {
	SecretKey string `env:"BG_SECRET_KEY" envDefault:"jds__63h3_7ds"`
}

// NewClientConfig sets up a client configuration.
func NewClientConfig() (*ClientConfig, error) {
	cfg := ClientConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewServerConfig sets up a server configuration.
func NewServerConfig() (*ServerConfig, error) {
	cfg := ServerConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewSecretConfig sets up a secret configuration.
func NewSecretConfig() (*SecretConfig, error) {
	cfg := SecretConfig{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewConfiguration sets up a total configuration.
func NewConfiguration() (*Config, error) {
	clientCfg, err := NewClientConfig()
	if err != nil {
		return nil, err
	}
	serverCfg, err := NewServerConfig()
	if err != nil {
		return nil, err
	}
	secretCfg, err := NewSecretConfig()
	if err != nil {
		return nil, err
	}
	return &Config{
		ClientConfig: clientCfg,
		ServerConfig: serverCfg,
		SecretConfig: secretCfg,
	}, nil
}

// isFlagPassed checks whether the flag was set in CLI
func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// ParseFlags parses command line arguments and stores them
func (c *Config) ParseFlags() {
	a := flag.String("a", ":7070", "Gate API server address")
	b := flag.String("b", "http://localhost:7070", "Gate API base URL")
	k := flag.String("k", "", "API key")
	p := flag.String("p", "", "Project UUID")
	s := flag.String("s", "", "Shared symmetric key")
	d := flag.Bool("debug", false, "Enable request tracing")
	flag.Parse()
	// priority: flag -> env -> default flag
	// note that env parsing precedes flag parsing
	if isFlagPassed("a") || c.ServerConfig.ServerAddress == "" {
		c.ServerConfig.ServerAddress = *a
	}
	if isFlagPassed("b") || c.ClientConfig.BaseURL == "" {
		c.ClientConfig.BaseURL = *b
	}
	if isFlagPassed("k") || c.ClientConfig.APIKey == "" {
		c.ClientConfig.APIKey = *k
	}
	if isFlagPassed("p") || c.ClientConfig.ProjectUUID == "" {
		c.ClientConfig.ProjectUUID = *p
	}
	if isFlagPassed("s") || c.SecretConfig.SecretKey == "" {
		c.SecretConfig.SecretKey = *s
	}
	if isFlagPassed("debug") {
		c.ClientConfig.Debug = *d
	}
}
