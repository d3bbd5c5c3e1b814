package config

import (
	"flag"
	"os"
	"strings"

	"github.com/VectorPrivacy/vector-sdk-go/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string     comma separated destinations, tried in order
//	-p string     proxy, host:port means socks5
//	-r int        retries per destination
//	-s duration   spacing between retries
//	-k int        chunk size in bytes
//	-stall dur    time without progress before an attempt is abandoned
//	-db string    delivery journal path
//	-v            verbose logging
//
// os.Args is filtered with flagx so that -c/-config and anything meant for
// other components does not reach this FlagSet.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:],
		[]string{"-d", "-p", "-r", "-s", "-k", "-stall", "-db"},
		[]string{"-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	destinations := fs.String("d", strings.Join(cfg.Destinations, ","), "comma separated upload destinations")
	fs.StringVar(&cfg.Proxy, "p", cfg.Proxy, "proxy address (host:port for socks5, or a URL)")
	fs.IntVar(&cfg.RetryCount, "r", cfg.RetryCount, "retries per destination")
	fs.DurationVar(&cfg.RetrySpacing, "s", cfg.RetrySpacing, "spacing between retries")
	fs.IntVar(&cfg.ChunkSize, "k", cfg.ChunkSize, "upload chunk size in bytes")
	fs.DurationVar(&cfg.StallTimeout, "stall", cfg.StallTimeout, "abandon an attempt after this long without progress")
	fs.StringVar(&cfg.JournalPath, "db", cfg.JournalPath, "delivery journal database")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Destinations = flagx.SplitList(*destinations)
}
