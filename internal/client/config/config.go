package config

import "time"

// Config holds runtime settings for the geoposts CLI.
//
// RequestsPerSecond limits outgoing gateway calls; zero disables the limit.
// DefaultRadiusMeters is the marker search radius around the map center.
type Config struct {
	ServerBaseURL       string        `env:"SERVER_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	RequestsPerSecond   float64       `env:"REQUESTS_PER_SECOND"`
	OAuthClientID       string        `env:"OAUTH_CLIENT_ID"`
	OAuthRedirectURI    string        `env:"OAUTH_REDIRECT_URI"`
	DefaultRadiusMeters float64       `env:"RADIUS_METERS"`
	DatabasePath        string        `env:"DB_PATH"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/"
	c.RequestTimeout = 10 * time.Second
	c.RequestsPerSecond = 0
	c.OAuthClientID = ""
	c.OAuthRedirectURI = "geoposts://oauth"
	c.DefaultRadiusMeters = 5000
	c.DatabasePath = "geoposts.db"
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags in that order. It panics on malformed input.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
