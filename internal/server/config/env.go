package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/todoauth/internal/flagx"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr       = "TODOAUTH_HTTP_ADDR"
	EnvGRPCAddr       = "TODOAUTH_GRPC_ADDR"
	EnvDatabaseDSN    = "TODOAUTH_DATABASE_DSN"
	EnvRefreshStore   = "TODOAUTH_REFRESH_STORE"
	EnvRedisAddr      = "TODOAUTH_REDIS_ADDR"
	EnvSecretKey      = "TODOAUTH_SECRET_KEY"
	EnvAccessValidity = "TODOAUTH_ACCESS_TOKEN_VALIDITY"
	EnvRefreshMonths  = "TODOAUTH_REFRESH_TOKEN_VALIDITY_MONTHS"
	EnvGracePeriod    = "TODOAUTH_ROTATION_GRACE_PERIOD"
	EnvRequestTimeout = "TODOAUTH_REQUEST_TIMEOUT"
	EnvLogLevel       = "TODOAUTH_LOG_LEVEL"
	defaultDotEnvFile = ".env"
)

// parseEnv overlays values from the process environment. A dotenv file named
// by -env is loaded first and must exist; otherwise ./.env is loaded if
// present. Variables already set in the environment win over the file.
// Malformed numeric or duration values panic.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if _, err := os.Stat(defaultDotEnvFile); err == nil {
		if err := godotenv.Load(defaultDotEnvFile); err != nil {
			panic(err)
		}
	}

	envString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	envString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	envString(&config.DatabaseDSN, EnvDatabaseDSN)
	envString(&config.RefreshStore, EnvRefreshStore)
	envString(&config.RedisAddr, EnvRedisAddr)
	envString(&config.SecretKey, EnvSecretKey)
	envString(&config.LogLevel, EnvLogLevel)
	envDuration(&config.AccessTokenValidityDuration, EnvAccessValidity)
	envDuration(&config.RotationGracePeriod, EnvGracePeriod)
	envDuration(&config.RequestTimeout, EnvRequestTimeout)

	if v, ok := os.LookupEnv(EnvRefreshMonths); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("%s: %w", EnvRefreshMonths, err))
		}
		config.RefreshTokenValidityMonths = n
	}
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}
