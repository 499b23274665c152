package config

import (
	"flag"
	"os"

	"github.com/figmints/meetsync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":3456")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-b string   archive bucket name
//	-g string   archive region
//	-e string   archive base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Args are filtered first with flagx.FilterArgs so flags owned by other
// packages (such as -c/-config) do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.ArchiveBucket, "b", config.ArchiveBucket, "archive bucket")
	fs.StringVar(&config.ArchiveRegion, "g", config.ArchiveRegion, "archive region")
	fs.StringVar(&config.ArchiveEndpoint, "e", config.ArchiveEndpoint, "archive base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
