package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds every tunable of the relay. Values come from an optional
// YAML file, with environment variables taking precedence for the
// deployment-specific bits.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Store struct {
		// "file" or "sqlite"
		Backend string `yaml:"backend"`
		// snapshot directory for the file backend
		Dir string `yaml:"dir"`
		// database path for the sqlite backend
		DBPath string `yaml:"db_path"`
	} `yaml:"store"`

	Autosave struct {
		Interval Duration `yaml:"interval"`
	} `yaml:"autosave"`

	Relay struct {
		SendQueueSize     int `yaml:"send_queue_size"`
		SaveQueueSize     int `yaml:"save_queue_size"`
		MaxClientsPerRoom int `yaml:"max_clients_per_room"`

		RateLimit struct {
			MessagesPerSecond float64 `yaml:"messages_per_second"`
			Burst             int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"relay"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Store.Backend = "file"
	cfg.Store.Dir = "./data/snapshots"
	cfg.Store.DBPath = "./data/flowsync.db"
	cfg.Autosave.Interval = Duration(30 * time.Second)
	cfg.Relay.SendQueueSize = 256
	cfg.Relay.SaveQueueSize = 64
	cfg.Relay.MaxClientsPerRoom = 0 // 0 means unlimited
	cfg.Relay.RateLimit.MessagesPerSecond = 100
	cfg.Relay.RateLimit.Burst = 200
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and applies environment overrides on top of the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if backend := os.Getenv("FLOWSYNC_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if dir := os.Getenv("FLOWSYNC_DATA_DIR"); dir != "" {
		c.Store.Dir = dir
	}
	if dbPath := os.Getenv("FLOWSYNC_DB_PATH"); dbPath != "" {
		c.Store.DBPath = dbPath
	}
}

func (c *Config) validate() error {
	if c.Store.Backend != "file" && c.Store.Backend != "sqlite" {
		return fmt.Errorf("unknown store backend %q (want file or sqlite)", c.Store.Backend)
	}
	if c.Autosave.Interval.Std() <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %v", c.Autosave.Interval.Std())
	}
	if c.Relay.SendQueueSize <= 0 {
		return fmt.Errorf("send queue size must be positive, got %d", c.Relay.SendQueueSize)
	}
	if c.Relay.SaveQueueSize <= 0 {
		return fmt.Errorf("save queue size must be positive, got %d", c.Relay.SaveQueueSize)
	}
	return nil
}
