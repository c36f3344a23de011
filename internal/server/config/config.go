// Package config handles configuration for the server component:
// defaults, a JSON overlay, a .env file plus environment variables, and
// finally command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Config holds runtime settings for the sync server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the JSON API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - DatabaseDriver / DatabaseDSN / DatabaseMaxOpenConns: storage settings.
//   - JWTSecret / JWTIssuer / JWTAudience / TokenValidityDuration: token settings.
//     An empty audience is derived from the issuer.
//   - AllowNewRegister: whether an unknown email creates an account on /auth.
//   - AuthRateLimit / AuthRateBurst: per-client-IP limit on /auth (requests/s).
//   - TrustedProxies: IPs or CIDRs whose X-Forwarded-For is believed when
//     resolving the client IP. Empty means the socket address is used.
//   - RedisAddr / RedisPassword / RedisDB / CacheTTL: package cache; empty
//     RedisAddr keeps the cache in process.
//   - S3*: snapshot archive; empty S3Bucket disables it.
//   - LogLevel / LogBackend: logging settings ("slog" or "zap").
type Config struct {
	EndpointAddrHTTP      string
	EndpointAddrGRPC      string
	DatabaseDriver        string
	DatabaseDSN           string
	DatabaseMaxOpenConns  int
	JWTSecret             string
	JWTIssuer             string
	JWTAudience           string
	TokenValidityDuration time.Duration
	AllowNewRegister      bool
	AuthRateLimit         float64
	AuthRateBurst         int
	TrustedProxies        []string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	CacheTTL              time.Duration
	S3AccessKey           string
	S3SecretKey           string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	LogLevel              string
	LogBackend            string
	EnvFile               string

	// EnvFileMissing is set when EnvFile could not be loaded.
	EnvFileMissing bool
}

// LoadDefaults populates Config with development defaults.
// NOTE: JWTSecret has no default and must be provided.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "data.db"
	c.DatabaseMaxOpenConns = 16
	c.JWTIssuer = "http://0.0.0.0:8080/"
	c.TokenValidityDuration = 30 * 24 * time.Hour
	c.AllowNewRegister = true
	c.AuthRateLimit = 5
	c.AuthRateBurst = 10
	c.CacheTTL = 10 * time.Minute
	c.S3Region = "us-east-1"
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.EnvFile = ".env"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the .env file and environment variables, and
// finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate reports the first setting that makes the server unable to start.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is not set (JWT_SECRET)")
	}
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseMaxOpenConns <= 0 {
		return fmt.Errorf("database pool size must be positive, got %d", c.DatabaseMaxOpenConns)
	}
	if c.AuthRateLimit <= 0 || c.AuthRateBurst <= 0 {
		return errors.New("auth rate limit and burst must be positive")
	}
	for _, p := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(p); err != nil && net.ParseIP(p) == nil {
			return fmt.Errorf("trusted proxy %q is not an IP or CIDR", p)
		}
	}
	if c.TokenValidityDuration <= 0 {
		return errors.New("token validity must be positive")
	}
	return nil
}
