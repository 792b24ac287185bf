package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/usuarios/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-b int      bcrypt cost
//	-f string   frontend base URL for email links
//	-m string   mail driver (log|ses)
//	-l string   log level
//
// Only these flags are taken from args (see flagx.FilterArgs), so the admin
// CLI can keep its own positional arguments.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-b", "-f", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.MailDriver, "m", config.MailDriver, "mail driver (log|ses)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t overrides only when given.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
		}
	})
}
