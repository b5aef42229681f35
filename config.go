package xmlassist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the file form of Options.
type Config struct {
	DocCacheSize       int  `yaml:"doc_cache_size"`
	ReplayPollInterval int  `yaml:"replay_poll_interval"`
	RegistrySize       int  `yaml:"registry_size"`
	Watch              bool `yaml:"watch"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config data. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Options().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the config to Options.
func (c Config) Options() Options {
	return NewOptions().
		WithDocCacheSize(c.DocCacheSize).
		WithReplayPollInterval(c.ReplayPollInterval).
		WithRegistrySize(c.RegistrySize).
		WithWatch(c.Watch)
}
