package config

import "time"

// Config holds runtime settings for the meetsync CLI.
//
// Fields:
//   - ServerAddr: base URL of the backend HTTP API.
//   - DatabaseDSN: path to the local SQLite database file.
//   - RequestTimeout: per-request deadline for API calls.
//   - AutosaveInterval: how often an open dirty document is snapshotted
//     locally and pushed to the server.
type Config struct {
	ServerAddr       string
	DatabaseDSN      string
	RequestTimeout   time.Duration
	AutosaveInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:3456"
	c.DatabaseDSN = "meetsync.db"
	c.RequestTimeout = 10 * time.Second
	c.AutosaveInterval = 30 * time.Second
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
