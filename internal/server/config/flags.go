package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, months
//	-g int      rotation grace period, minutes
//	-m string   refresh token store: postgres, redis or memory
//	-k string   Redis address
//	-o int      request timeout, seconds
//	-l string   log level
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with -c/-config and -env.
//   - Duration flags are accepted as integers and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-s", "-t", "-r", "-g", "-m", "-k", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.RefreshTokenValidityMonths, "r", config.RefreshTokenValidityMonths, "refresh token validity (in months)")
	gracePeriod := fs.Int("g", int(config.RotationGracePeriod.Minutes()), "rotation grace period (in minutes)")

	fs.StringVar(&config.RefreshStore, "m", config.RefreshStore, "refresh token store (postgres|redis|memory)")
	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address")
	requestTimeout := fs.Int("o", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RotationGracePeriod = time.Duration(*gracePeriod) * time.Minute
	config.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
