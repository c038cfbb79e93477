package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/secureapp/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-f string   JSON user-record store path
//	-d string   PostgreSQL DSN (overrides the JSON store when set)
//	-s string   session cookie HMAC secret key
//	-l int      session lifetime, hours
//	-o string   comma-separated CORS origins
//	-p string   static files directory
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The lifetime
// flag is accepted as an integer in hours and converted to a time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-d", "-s", "-l", "-o", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.UserDBPath, "f", config.UserDBPath, "JSON user store path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionLifetime := fs.Int("l", int(config.SessionLifetime.Hours()), "session lifetime (in hours)")

	fs.StringVar(&config.CORSOrigins, "o", config.CORSOrigins, "allowed CORS origins (comma-separated)")
	fs.StringVar(&config.StaticDir, "p", config.StaticDir, "static files directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionLifetime = time.Duration(*sessionLifetime) * time.Hour
}
