package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for godotenv.Load.
var loadDotEnv = func(path string) error {
	return godotenv.Load(path)
}

// parseEnv loads the .env file (variables already set in the process
// environment win) and then overlays the recognised variables:
//
//	HTTP_ADDR, GRPC_ADDR, DATABASE_DRIVER, DATABASE_URL, DATABASE_MAX_CONNS,
//	JWT_SECRET, JWT_ISSUER, JWT_AUDIENCE, TOKEN_VALIDITY, ALLOW_NEW_REGISTER,
//	AUTH_RATE_LIMIT, AUTH_RATE_BURST, TRUSTED_PROXIES, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB,
//	CACHE_TTL, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION,
//	S3_BASE_ENDPOINT, LOG_LEVEL, LOG_BACKEND.
//
// Malformed numeric, boolean or duration values panic, like the JSON loader.
func parseEnv(config *Config) {
	if config.EnvFile != "" {
		if err := loadDotEnv(config.EnvFile); err != nil {
			config.EnvFileMissing = true
		}
	}
	applyEnv(config, os.LookupEnv)
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(err)
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				panic(err)
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(err)
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DRIVER", &config.DatabaseDriver)
	str("DATABASE_URL", &config.DatabaseDSN)
	integer("DATABASE_MAX_CONNS", &config.DatabaseMaxOpenConns)
	str("JWT_SECRET", &config.JWTSecret)
	str("JWT_ISSUER", &config.JWTIssuer)
	str("JWT_AUDIENCE", &config.JWTAudience)
	duration("TOKEN_VALIDITY", &config.TokenValidityDuration)
	boolean("ALLOW_NEW_REGISTER", &config.AllowNewRegister)
	float("AUTH_RATE_LIMIT", &config.AuthRateLimit)
	integer("AUTH_RATE_BURST", &config.AuthRateBurst)
	if v, ok := lookup("TRUSTED_PROXIES"); ok {
		config.TrustedProxies = splitList(v)
	}
	str("REDIS_ADDR", &config.RedisAddr)
	str("REDIS_PASSWORD", &config.RedisPassword)
	integer("REDIS_DB", &config.RedisDB)
	duration("CACHE_TTL", &config.CacheTTL)
	str("S3_ACCESS_KEY", &config.S3AccessKey)
	str("S3_SECRET_KEY", &config.S3SecretKey)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("LOG_LEVEL", &config.LogLevel)
	str("LOG_BACKEND", &config.LogBackend)
}

// splitList parses a comma separated list, dropping blank items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
