package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv_AllVariables(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	applyEnv(c, lookupFrom(map[string]string{
		"HTTP_ADDR":          ":9000",
		"GRPC_ADDR":          ":9001",
		"DATABASE_DRIVER":    "pgx",
		"DATABASE_URL":       "postgres://u:p@db/manga",
		"DATABASE_MAX_CONNS": "4",
		"JWT_SECRET":         "secret",
		"JWT_ISSUER":         "https://sync.example.org/",
		"JWT_AUDIENCE":       "https://sync.example.org/resource",
		"TOKEN_VALIDITY":     "24h",
		"ALLOW_NEW_REGISTER": "false",
		"AUTH_RATE_LIMIT":    "0.5",
		"AUTH_RATE_BURST":    "3",
		"TRUSTED_PROXIES":    "10.0.0.1, 172.16.0.0/12,",
		"REDIS_ADDR":         "redis:6379",
		"REDIS_PASSWORD":     "pw",
		"REDIS_DB":           "2",
		"CACHE_TTL":          "1m",
		"S3_ACCESS_KEY":      "ak",
		"S3_SECRET_KEY":      "sk",
		"S3_BUCKET":          "snapshots",
		"S3_REGION":          "eu-west-1",
		"S3_BASE_ENDPOINT":   "http://minio:9000",
		"LOG_LEVEL":          "debug",
		"LOG_BACKEND":        "zap",
	}))

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, ":9001", c.EndpointAddrGRPC)
	assert.Equal(t, DriverPostgres, c.DatabaseDriver)
	assert.Equal(t, "postgres://u:p@db/manga", c.DatabaseDSN)
	assert.Equal(t, 4, c.DatabaseMaxOpenConns)
	assert.Equal(t, "secret", c.JWTSecret)
	assert.Equal(t, "https://sync.example.org/", c.JWTIssuer)
	assert.Equal(t, "https://sync.example.org/resource", c.JWTAudience)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.False(t, c.AllowNewRegister)
	assert.Equal(t, 0.5, c.AuthRateLimit)
	assert.Equal(t, 3, c.AuthRateBurst)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, c.TrustedProxies)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, "pw", c.RedisPassword)
	assert.Equal(t, 2, c.RedisDB)
	assert.Equal(t, time.Minute, c.CacheTTL)
	assert.Equal(t, "ak", c.S3AccessKey)
	assert.Equal(t, "sk", c.S3SecretKey)
	assert.Equal(t, "snapshots", c.S3Bucket)
	assert.Equal(t, "eu-west-1", c.S3Region)
	assert.Equal(t, "http://minio:9000", c.S3BaseEndpoint)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "zap", c.LogBackend)
}

func TestApplyEnv_Unset_KeepsValues(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	before := *c

	applyEnv(c, lookupFrom(nil))
	assert.Equal(t, before, *c)
}

func TestApplyEnv_Malformed_Panics(t *testing.T) {
	for _, kv := range [][2]string{
		{"ALLOW_NEW_REGISTER", "maybe"},
		{"DATABASE_MAX_CONNS", "many"},
		{"TOKEN_VALIDITY", "forever"},
		{"AUTH_RATE_LIMIT", "fast"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			c := &Config{}
			require.Panics(t, func() {
				applyEnv(c, lookupFrom(map[string]string{kv[0]: kv[1]}))
			})
		})
	}
}

func TestParseEnv_LoadsDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MANGASYNC_TEST_ISSUER=http://dotenv/\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("MANGASYNC_TEST_ISSUER") })

	c := &Config{EnvFile: path}
	parseEnv(c)

	assert.False(t, c.EnvFileMissing)
	assert.Equal(t, "http://dotenv/", os.Getenv("MANGASYNC_TEST_ISSUER"))
}

func TestParseEnv_MissingDotEnv(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })

	var asked string
	loadDotEnv = func(p string) error {
		asked = p
		return errors.New("missing")
	}

	c := &Config{EnvFile: "nope.env"}
	parseEnv(c)

	assert.Equal(t, "nope.env", asked)
	assert.True(t, c.EnvFileMissing)
}
