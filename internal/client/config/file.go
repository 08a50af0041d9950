package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/portalcli/internal/flagx"
	"github.com/dmitrijs2005/portalcli/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file, JSON or YAML. Pointer
// fields distinguish "absent" from zero so a partial file only overrides
// what it names.
type FileConfig struct {
	APIBaseURL        *string         `json:"api_base_url" yaml:"api_base_url"`
	DatabasePath      *string         `json:"database_path" yaml:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DownloadDir       *string         `json:"download_dir" yaml:"download_dir"`
	RequestsPerSecond *float64        `json:"requests_per_second" yaml:"requests_per_second"`
	RequestBurst      *int            `json:"request_burst" yaml:"request_burst"`
	LogFile           *string         `json:"log_file" yaml:"log_file"`
	Verbose           *bool           `json:"verbose" yaml:"verbose"`
}

// parseFile overlays cfg with the file named by -c/-config in args. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON. No flag
// means no file.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.DatabasePath != nil {
		cfg.DatabasePath = *fc.DatabasePath
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DownloadDir != nil {
		cfg.DownloadDir = *fc.DownloadDir
	}
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	if fc.RequestBurst != nil {
		cfg.RequestBurst = *fc.RequestBurst
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
}
