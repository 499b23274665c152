package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/figmints/meetsync/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// strings in time.ParseDuration format ("30s").
type JsonConfig struct {
	ServerAddr       string `json:"server_addr"`
	DatabaseDSN      string `json:"database_dsn"`
	RequestTimeout   string `json:"request_timeout"`
	AutosaveInterval string `json:"autosave_interval"`
}

// parseJson overlays Config with values loaded from a JSON file named by the
// -c/-config flag. Missing flag means nothing to load; a broken file panics.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if jc.AutosaveInterval != "" {
		d, err := time.ParseDuration(jc.AutosaveInterval)
		if err != nil {
			panic(err)
		}
		cfg.AutosaveInterval = d
	}
}
