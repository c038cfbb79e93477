// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the SecureApp server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - UserDBPath: path of the JSON user-record store file.
//   - DatabaseDSN: optional PostgreSQL DSN (pgx); when set it replaces the
//     JSON file store.
//   - SecretKey: HMAC secret for signing the session cookie token (HS256).
//     Do not use test defaults in prod.
//   - SessionLifetime: absolute session lifetime; no sliding renewal.
//   - CORSOrigins: comma-separated list of allowed origins.
//   - StaticDir: directory served at /; empty disables static serving.
type Config struct {
	EndpointAddrHTTP string
	UserDBPath       string
	DatabaseDSN      string
	SecretKey        string
	SessionLifetime  time.Duration
	CORSOrigins      string
	StaticDir        string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.UserDBPath = "db.json"
	c.DatabaseDSN = ""
	c.SecretKey = "a very secret key"
	c.SessionLifetime = 24 * time.Hour
	c.CORSOrigins = "http://localhost:3000"
	c.StaticDir = "public"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
