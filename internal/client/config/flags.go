package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-m", "-d", "-p", "-u", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the backend health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "deployment mode: local or cloud")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DatabaseDSN, "p", cfg.DatabaseDSN, "PostgreSQL DSN of the cloud store")
	fs.StringVar(&cfg.DemoAPIURL, "u", cfg.DemoAPIURL, "demo account API base URL")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if flagx.Provided(args, "-i") {
		cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	}
	if flagx.Provided(args, "-m") {
		cfg.ModeExplicit = true
	}
}
