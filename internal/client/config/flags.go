package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mangasync/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Only -a, -d
// and -t are considered; everything else in os.Args is left alone.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the sync server")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory for local client state")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
