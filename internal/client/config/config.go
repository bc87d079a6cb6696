package config

import (
	"fmt"
	"os"
	"time"
)

const (
	TransportGRPC = "grpc"
	TransportHTTP = "http"
)

// Config holds runtime settings for the Mandaditos CLI.
type Config struct {
	ServerEndpointAddr  string        `envconfig:"SERVER_ADDRESS"`
	ServerURL           string        `envconfig:"SERVER_URL"`
	Transport           string        `envconfig:"TRANSPORT"`
	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	SyncTimeout         time.Duration `envconfig:"SYNC_TIMEOUT"`
	DatabasePath        string        `envconfig:"DATABASE_PATH"`
	DeviceName          string        `envconfig:"DEVICE"`
	AccessKey           string        `envconfig:"ACCESS_KEY"`
	LogFile             string        `envconfig:"LOG_FILE"`
	LogLevel            string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ServerURL = "http://127.0.0.1:8080"
	c.Transport = TransportGRPC
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncTimeout = 10 * time.Second
	c.DatabasePath = "mandaditos.db"
	c.DeviceName, _ = os.Hostname()
	c.LogFile = "mandaditos.log"
	c.LogLevel = "info"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGRPC, TransportHTTP:
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportGRPC, TransportHTTP)
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync timeout must be positive")
	}
	return nil
}

// LoadConfig applies defaults, then JSON, environment and flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
