package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mangasync/internal/flagx"
	"github.com/dmitrijs2005/mangasync/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept both "720h" style strings and integer nanoseconds. Absent fields keep
// the value configured before the file was read.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDriver        string         `json:"database_driver"`
	DatabaseDSN           string         `json:"database_dsn"`
	DatabaseMaxOpenConns  int            `json:"database_max_open_conns"`
	JWTSecret             string         `json:"jwt_secret"`
	JWTIssuer             string         `json:"jwt_issuer"`
	JWTAudience           string         `json:"jwt_audience"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	AllowNewRegister      *bool          `json:"allow_new_register"`
	AuthRateLimit         float64        `json:"auth_rate_limit"`
	AuthRateBurst         int            `json:"auth_rate_burst"`
	TrustedProxies        []string       `json:"trusted_proxies"`
	RedisAddr             string         `json:"redis_addr"`
	RedisPassword         string         `json:"redis_password"`
	RedisDB               int            `json:"redis_db"`
	CacheTTL              timex.Duration `json:"cache_ttl"`
	S3AccessKey           string         `json:"s3_access_key"`
	S3SecretKey           string         `json:"s3_secret_key"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	LogLevel              string         `json:"log_level"`
	LogBackend            string         `json:"log_backend"`
	EnvFile               string         `json:"env_file"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag. Without the flag nothing is loaded. Unreadable files and
// invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.applyTo(config)
}

func (c *JsonConfig) applyTo(config *Config) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}

	setStr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setStr(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setStr(&config.DatabaseDriver, c.DatabaseDriver)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.DatabaseMaxOpenConns, c.DatabaseMaxOpenConns)
	setStr(&config.JWTSecret, c.JWTSecret)
	setStr(&config.JWTIssuer, c.JWTIssuer)
	setStr(&config.JWTAudience, c.JWTAudience)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.AllowNewRegister != nil {
		config.AllowNewRegister = *c.AllowNewRegister
	}
	if c.AuthRateLimit != 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	setInt(&config.AuthRateBurst, c.AuthRateBurst)
	if c.TrustedProxies != nil {
		config.TrustedProxies = c.TrustedProxies
	}
	setStr(&config.RedisAddr, c.RedisAddr)
	setStr(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	if c.CacheTTL.Duration != 0 {
		config.CacheTTL = c.CacheTTL.Duration
	}
	setStr(&config.S3AccessKey, c.S3AccessKey)
	setStr(&config.S3SecretKey, c.S3SecretKey)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setStr(&config.LogLevel, c.LogLevel)
	setStr(&config.LogBackend, c.LogBackend)
	setStr(&config.EnvFile, c.EnvFile)
}
