package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/amanotes/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-i duration   database ping interval (e.g., "5s")
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.PingInterval, "i", config.PingInterval, "database ping interval")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
