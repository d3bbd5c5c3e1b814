package config

import (
	"flag"
	"os"

	"github.com/VectorPrivacy/vector-sdk-go/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-u string     public base URL
//	-d string     PostgreSQL DSN, empty for an in-memory index
//	-dir string   blob directory
//	-s string     upload grant secret
//	-m int        maximum upload size in bytes
//	-l int        uploads per client per window, 0 to disable
//	-w duration   rate limit window
//	-debug        development logging
func parseFlags(config *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:],
		[]string{"-a", "-u", "-d", "-dir", "-s", "-m", "-l", "-w"},
		[]string{"-debug"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.PublicURL, "u", config.PublicURL, "public base URL")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DataDir, "dir", config.DataDir, "blob directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "upload grant secret")
	fs.Int64Var(&config.MaxUploadBytes, "m", config.MaxUploadBytes, "maximum upload size in bytes")
	fs.IntVar(&config.RateLimit, "l", config.RateLimit, "uploads per client per window")
	fs.DurationVar(&config.RateWindow, "w", config.RateWindow, "rate limit window")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "development logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
