package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/mdd/internal/flagx"
)

// parseFlags overlays short command-line flags onto config:
//
//	-a string   HTTP bind address
//	-g string   gRPC health bind address
//	-d string   database DSN
//	-s string   token signing secret
//	-i string   token issuer
//	-t int      token validity, minutes
//	-o string   allowed CORS origin
//	-r string   redis address
//	-p string   redis password
//	-l int      auth requests allowed per window
//	-w int      auth rate window, seconds
//	-L string   log level
//
// Only these flags are parsed, so flags meant for other components (such
// as -c) pass through untouched.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-i", "-t", "-o", "-r", "-p", "-l", "-w", "-L"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	validity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.ClientURL, "o", config.ClientURL, "allowed CORS origin")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address, empty disables rate limiting")
	fs.StringVar(&config.RedisPassword, "p", config.RedisPassword, "redis password")
	fs.IntVar(&config.AuthRateLimit, "l", config.AuthRateLimit, "auth requests per window")
	window := fs.Int("w", int(config.AuthRateWindow.Seconds()), "auth rate window (in seconds)")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// only flags actually given replace the JSON durations
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenValidityDuration = time.Duration(*validity) * time.Minute
		case "w":
			config.AuthRateWindow = time.Duration(*window) * time.Second
		}
	})
	return nil
}
