package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/figmints/meetsync/internal/flagx"
)

// jsonConfig is the intermediate DTO for the JSON configuration file.
// Durations are strings in time.ParseDuration format ("168h").
type jsonConfig struct {
	EndpointAddr     string `json:"endpoint_addr"`
	DatabaseDSN      string `json:"database_dsn"`
	SecretKey        string `json:"secret_key"`
	TokenValidity    string `json:"token_validity"`
	ArchiveAccessKey string `json:"archive_access_key"`
	ArchiveSecretKey string `json:"archive_secret_key"`
	ArchiveBucket    string `json:"archive_bucket"`
	ArchiveRegion    string `json:"archive_region"`
	ArchiveEndpoint  string `json:"archive_endpoint"`
}

// parseJson overlays values from the JSON file named by the -c/-config flag.
// Absent file means nothing to load; an unreadable or invalid file panics,
// since starting with half-applied configuration is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidity != "" {
		d, err := time.ParseDuration(c.TokenValidity)
		if err != nil {
			panic(err)
		}
		config.TokenValidity = d
	}
	if c.ArchiveAccessKey != "" {
		config.ArchiveAccessKey = c.ArchiveAccessKey
	}
	if c.ArchiveSecretKey != "" {
		config.ArchiveSecretKey = c.ArchiveSecretKey
	}
	if c.ArchiveBucket != "" {
		config.ArchiveBucket = c.ArchiveBucket
	}
	if c.ArchiveRegion != "" {
		config.ArchiveRegion = c.ArchiveRegion
	}
	if c.ArchiveEndpoint != "" {
		config.ArchiveEndpoint = c.ArchiveEndpoint
	}
}
