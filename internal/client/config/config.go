package config

import (
	"os"
	"path/filepath"
	"time"
)

const databaseFile = "pairchat.db"

// Config holds runtime settings for the pairchat CLI.
//
// Fields:
//   - ServerURL: base URL of the server's HTTP API; the WebSocket URL is derived from it.
//   - RequestTimeout: upper bound for a single HTTP call.
//   - DataDir: where the local SQLite cache lives. Empty means the
//     per-user config directory.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	DataDir             string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5001"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = ""
	c.OnlineCheckInterval = 5 * time.Second
}

// DatabasePath resolves the location of the local cache, creating the
// directory when needed.
func (c *Config) DatabasePath() (string, error) {
	dir := c.DataDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "pairchat")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, databaseFile), nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
