package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
	LocalStore LocalStoreConfig `yaml:"local_store"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig guards the write API. An empty key disables the check; on a
// tailnet the network itself is the perimeter.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// LocalStoreConfig locates the on-disk key-value store used for
// active-workout snapshots. An empty dir falls back to in-memory.
type LocalStoreConfig struct {
	Dir string `yaml:"dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix SIMPLESTRENGTH_ and underscore-separated
// paths:
//
//	SIMPLESTRENGTH_SERVER_HOST, SIMPLESTRENGTH_SERVER_PORT,
//	SIMPLESTRENGTH_DB_HOST, SIMPLESTRENGTH_DB_PORT, SIMPLESTRENGTH_DB_NAME,
//	SIMPLESTRENGTH_DB_USER, SIMPLESTRENGTH_DB_PASSWORD, SIMPLESTRENGTH_DB_SSLMODE,
//	SIMPLESTRENGTH_AUTH_API_KEY, SIMPLESTRENGTH_LOCAL_STORE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SIMPLESTRENGTH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("SIMPLESTRENGTH_LOCAL_STORE_DIR"); v != "" {
		cfg.LocalStore.Dir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
