package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Redis  RedisConfig  `yaml:"redis"`
	Voice  VoiceConfig  `yaml:"voice"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	// Driver selects the storage backend: "memory" or "mysql".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	// Addr enables the Redis change-event broker; empty keeps the
	// in-process hub.
	Addr string `yaml:"addr"`
}

type VoiceConfig struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	Language     string `yaml:"language"`
	SampleRate   int    `yaml:"sample_rate"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file, expanding ${ENV} references before parsing
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Voice.Language == "" {
		c.Voice.Language = "en"
	}
	if c.Voice.SampleRate == 0 {
		c.Voice.SampleRate = 16000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
