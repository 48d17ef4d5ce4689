package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Values load from an optional
// YAML file, then environment variables override field by field.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
	Log     LogConfig     `yaml:"log"`
	Order   OrderConfig   `yaml:"order"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

type MongoDBConfig struct {
	URI         string `yaml:"uri"`
	Database    string `yaml:"database"`
	ReplicaSet  string `yaml:"replicaSet"`
	MaxPoolSize uint64 `yaml:"maxPoolSize"`

	// Credentials are env-only so they stay out of config files
	Username string `yaml:"-"`
	Password string `yaml:"-"`
	AuthDB   string `yaml:"authDb"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type OrderConfig struct {
	// DeleteRestocks reverses an order's stock effect when it is deleted
	DeleteRestocks bool `yaml:"deleteRestocks"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "ims",
			MaxPoolSize: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
		Order: OrderConfig{
			DeleteRestocks: true,
		},
	}
}

// Load reads configuration from path (skipped when empty or missing) and
// applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.MongoDB.URI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.MongoDB.Database = v
	}
	if v := os.Getenv("MONGODB_REPLICA_SET"); v != "" {
		c.MongoDB.ReplicaSet = v
	}
	if v := os.Getenv("MONGODB_USERNAME"); v != "" {
		c.MongoDB.Username = v
	}
	if v := os.Getenv("MONGODB_PASSWORD"); v != "" {
		c.MongoDB.Password = v
	}
	if v := os.Getenv("MONGODB_AUTH_DB"); v != "" {
		c.MongoDB.AuthDB = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ORDER_DELETE_RESTOCKS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Order.DeleteRestocks = b
		}
	}
}
