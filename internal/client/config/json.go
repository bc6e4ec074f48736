package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/geoposts/internal/flagx"
	"github.com/dmitrijs2005/geoposts/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Pointer fields tell an
// omitted key apart from a zero value.
type JsonConfig struct {
	ServerBaseURL       *string         `json:"server_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RequestsPerSecond   *float64        `json:"requests_per_second"`
	OAuthClientID       *string         `json:"oauth_client_id"`
	OAuthRedirectURI    *string         `json:"oauth_redirect_uri"`
	DefaultRadiusMeters *float64        `json:"radius_meters"`
	DatabasePath        *string         `json:"database_path"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with the file named by -c or -config, if any.
// Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.ServerBaseURL, jc.ServerBaseURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	set(&cfg.RequestsPerSecond, jc.RequestsPerSecond)
	set(&cfg.OAuthClientID, jc.OAuthClientID)
	set(&cfg.OAuthRedirectURI, jc.OAuthRedirectURI)
	set(&cfg.DefaultRadiusMeters, jc.DefaultRadiusMeters)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.LogLevel, jc.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
