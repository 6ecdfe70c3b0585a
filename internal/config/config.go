package config

import (
	"fmt"
	"os"

	"github.com/ernie/minictrl/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Logging     logging.Config `yaml:"logging"`
	NATS        NATSConfig     `yaml:"nats"`
	CSGOServers []CSGOServer   `yaml:"csgo_servers"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig holds live event publishing settings.
// An empty URL with Embedded unset disables publishing.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Embedded      bool   `yaml:"embedded"`
	EmbeddedPort  int    `yaml:"embedded_port"`
}

// Enabled reports whether events should be published
func (c NATSConfig) Enabled() bool {
	return c.URL != "" || c.Embedded
}

// CSGOServer is a game server whose log is ingested
type CSGOServer struct {
	Name      string `yaml:"name"`
	LogPath   string `yaml:"log_path"`
	FromStart bool   `yaml:"from_start"` // ingest the existing file before following it
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Set defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = "127.0.0.1"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/var/lib/minictrl/minictrl.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "csgo"
	}
	if cfg.NATS.EmbeddedPort == 0 {
		cfg.NATS.EmbeddedPort = 4222
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the server list
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for i, srv := range c.CSGOServers {
		if srv.Name == "" {
			return fmt.Errorf("csgo_servers[%d]: name is required", i)
		}
		if srv.LogPath == "" {
			return fmt.Errorf("csgo_servers[%d] (%s): log_path is required", i, srv.Name)
		}
		if seen[srv.Name] {
			return fmt.Errorf("csgo_servers[%d]: duplicate name %q", i, srv.Name)
		}
		seen[srv.Name] = true
	}
	return nil
}
