package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the Portal CLI.
type Config struct {
	// APIBaseURL is the root of the Portal API, e.g. http://localhost:8000.
	APIBaseURL string
	// DatabasePath is the SQLite file holding the persisted session.
	DatabasePath string
	// RequestTimeout bounds every HTTP call.
	RequestTimeout time.Duration
	// DownloadDir receives exported spreadsheets; empty means the working
	// directory.
	DownloadDir string

	RequestsPerSecond float64
	RequestBurst      int

	LogFile string
	Verbose bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.DatabasePath = "portal.db"
	c.RequestTimeout = 15 * time.Second
	c.DownloadDir = ""
	c.RequestsPerSecond = 10
	c.RequestBurst = 5
	c.LogFile = "portal.log"
	c.Verbose = false
}

// LoadConfig builds a Config from args (normally os.Args[1:]). Sources are
// applied in order, later ones overriding earlier ones: defaults, the
// config file named by -c/-config, the environment (including an optional
// .env file), then flags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, ".env"); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.APIBaseURL == "":
		return fmt.Errorf("api base url is empty")
	case c.DatabasePath == "":
		return fmt.Errorf("database path is empty")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.RequestsPerSecond <= 0:
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	case c.RequestBurst < 1:
		return fmt.Errorf("request burst must be at least 1, got %d", c.RequestBurst)
	}
	return nil
}
