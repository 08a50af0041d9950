// Package config loads runtime configuration for the Portal CLI.
//
// # Sources and precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file given with -c or -config. Files ending in .yaml
//     or .yml are YAML, everything else is JSON.
//  3. Environment: PORTAL_API_URL, PORTAL_DB_PATH and PORTAL_DOWNLOAD_DIR,
//     optionally read from a .env file in the working directory.
//  4. Command-line flags -a, -d, -t and -o.
//
// # File schema
//
// Durations use timex.Duration and may be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://portal.example.com",
//	  "database_path": "/var/lib/portal/portal.db",
//	  "request_timeout": "20s",
//	  "download_dir": "downloads",
//	  "requests_per_second": 5,
//	  "request_burst": 2,
//	  "log_file": "portal.log",
//	  "verbose": true
//	}
package config
