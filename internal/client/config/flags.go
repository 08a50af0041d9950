package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/portalcli/internal/flagx"
)

// Flags understood by parseFlags. Each short form has a long alias that
// accepts one or two dashes.
var configFlags = []string{
	"-a", "-api-url", "--api-url",
	"-d", "-db", "--db",
	"-t", "-timeout", "--timeout",
	"-o", "-out", "--out",
}

// parseFlags populates Config fields from command-line flags:
//
//	-a, --api-url string   API base url
//	-d, --db string        local database file
//	-t, --timeout int      request timeout in seconds
//	-o, --out string       download directory
//
// args is filtered with flagx.FilterArgs first so subcommand flags and
// positional arguments are left alone.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	for _, name := range []string{"a", "api-url"} {
		fs.StringVar(&cfg.APIBaseURL, name, cfg.APIBaseURL, "API base url")
	}
	for _, name := range []string{"d", "db"} {
		fs.StringVar(&cfg.DatabasePath, name, cfg.DatabasePath, "local database file")
	}
	for _, name := range []string{"o", "out"} {
		fs.StringVar(&cfg.DownloadDir, name, cfg.DownloadDir, "download directory")
	}
	timeout := int(cfg.RequestTimeout / time.Second)
	for _, name := range []string{"t", "timeout"} {
		fs.IntVar(&timeout, name, timeout, "request timeout (in seconds)")
	}

	if err := fs.Parse(flagx.FilterArgs(args, configFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(timeout) * time.Second
	return nil
}
