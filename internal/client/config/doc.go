// Package config loads runtime configuration for the geoposts CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Environment variables prefixed with GEOPOSTS_.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   local database path
//	-l string   log level: debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds are both
// accepted. Omitted keys keep their previous value.
//
//	{
//	  "server_url": "https://geoposts.example/api/",
//	  "request_timeout": "10s",
//	  "requests_per_second": 5,
//	  "oauth_client_id": "0123abcd",
//	  "oauth_redirect_uri": "geoposts://oauth",
//	  "radius_meters": 5000,
//	  "database_path": "geoposts.db",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	GEOPOSTS_SERVER_URL, GEOPOSTS_REQUEST_TIMEOUT, GEOPOSTS_REQUESTS_PER_SECOND,
//	GEOPOSTS_OAUTH_CLIENT_ID, GEOPOSTS_OAUTH_REDIRECT_URI, GEOPOSTS_RADIUS_METERS,
//	GEOPOSTS_DB_PATH, GEOPOSTS_LOG_LEVEL
package config
