package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/mangasync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-r string   gRPC health bind address (e.g., ":50051")
//	-t string   database driver ("sqlite" or "pgx")
//	-d string   database DSN
//	-m int      max open database connections
//	-s string   JWT HMAC secret
//	-i string   JWT issuer
//	-n bool     allow registration of new users (use -n=false)
//	-k string   redis address (empty disables the cache)
//	-b string   S3 bucket (empty disables snapshot archiving)
//	-e string   S3 base endpoint
//	-l string   log level
//
// Only the flags above are taken from os.Args (see flagx.FilterArgs), so the
// -c/-config flag used by the JSON loader does not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-t", "-d", "-m", "-s", "-i", "-k", "-b", "-e", "-l"}, "-n")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "address and port to run the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DatabaseMaxOpenConns, "m", config.DatabaseMaxOpenConns, "max open database connections")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "jwt secret")
	fs.StringVar(&config.JWTIssuer, "i", config.JWTIssuer, "jwt issuer")
	fs.BoolVar(&config.AllowNewRegister, "n", config.AllowNewRegister, "allow registration of new users")
	fs.StringVar(&config.RedisAddr, "k", config.RedisAddr, "redis address")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
