package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only -a, -t, -d and -i are looked at; other arguments are filtered out
// with flagx.FilterArgs. -t and -i are applied only when given explicitly.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the pairchat server")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory for the local cache")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
		}
	})
}
